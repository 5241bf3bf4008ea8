package events

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/internal/organizations"
	"github.com/meetvo/backend/pkg/response"
)

// CreateRequest is the body for POST /organization/:organization_id/event.
type CreateRequest struct {
	Title     string    `json:"title" binding:"required"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

// UpdateRequest is the body for PATCH /event/:event_id.
type UpdateRequest struct {
	Title     *string    `json:"title"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /organization/:organization_id/event. Ownership is
// enforced by organizations.RequireOwner on the route.
func (h *Handler) Create(c *gin.Context) {
	org := organizations.MustFromContext(c)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title and expires_at are required")
		return
	}

	id, err := newEventID()
	if err != nil {
		h.logger.Error("generate event id failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}

	event := &models.Event{
		ID:             id,
		OrganizationID: org.ID,
		Title:          req.Title,
		ExpiresAt:      req.ExpiresAt,
	}
	if err := h.repo.Create(c.Request.Context(), event); err != nil {
		h.logger.Error("create event failed", zap.Error(err), zap.String("organization_id", org.ID.String()))
		response.Internal(c, "internal server error")
		return
	}
	response.Created(c, event)
}

// GetByID handles GET /event/:event_id.
func (h *Handler) GetByID(c *gin.Context) {
	event, err := h.repo.GetByID(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if event == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, event)
}

// ListByOrganization handles GET /organization/:organization_id/event.
func (h *Handler) ListByOrganization(c *gin.Context) {
	h.list(c, false)
}

// ListActiveByOrganization handles GET /organization/:organization_id/event/active.
func (h *Handler) ListActiveByOrganization(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) list(c *gin.Context, activeOnly bool) {
	org := organizations.MustFromContext(c)
	list, err := h.repo.ListByOrganization(c.Request.Context(), org.ID, activeOnly)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err), zap.String("organization_id", org.ID.String()))
		response.Internal(c, "internal server error")
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	response.OK(c, list)
}

// Update handles PATCH /event/:event_id. Expired events are immutable.
func (h *Handler) Update(c *gin.Context) {
	eventID := c.Param("event_id")

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Title == nil && req.ExpiresAt == nil) {
		response.BadRequest(c, "no data provided for update")
		return
	}

	ctx := c.Request.Context()
	event, err := h.repo.GetByID(ctx, eventID)
	if err != nil {
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if event == nil {
		response.NotFound(c, "event not found")
		return
	}
	if event.IsExpired {
		response.Forbidden(c, "cannot edit an expired event")
		return
	}

	updated, err := h.repo.Update(ctx, eventID, req.Title, req.ExpiresAt)
	if err != nil {
		h.logger.Error("update event failed", zap.Error(err), zap.String("event_id", eventID))
		response.Internal(c, "internal server error")
		return
	}
	if updated == nil {
		// The sweep expired the event between the read and the update.
		response.Forbidden(c, "cannot edit an expired event")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /event/:event_id.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("event_id")); err != nil {
		h.logger.Error("delete event failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// Expire handles POST /event/:event_id/expire.
func (h *Handler) Expire(c *gin.Context) {
	event, err := h.repo.Expire(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		h.logger.Error("expire event failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if event == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, event)
}

// newEventID returns a 9-character lowercase hex token, short enough to type
// from a projector slide or QR code.
func newEventID() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:9], nil
}
