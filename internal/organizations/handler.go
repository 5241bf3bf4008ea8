package organizations

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetvo/backend/internal/middleware"
	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/pkg/response"
)

// CreateRequest is the body for POST /organization.
type CreateRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

// UpdateRequest is the body for PATCH /organization/:organization_id.
type UpdateRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /organization. A user may own at most
// models.MaxOrganizationsPerOwner organizations.
func (h *Handler) Create(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Forbidden(c, "user not authenticated")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name is required")
		return
	}

	ctx := c.Request.Context()
	owned, err := h.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		h.logger.Error("count organizations failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if owned >= models.MaxOrganizationsPerOwner {
		response.BadRequest(c, "organization limit reached")
		return
	}

	org := &models.Organization{Name: req.Name, Phone: req.Phone, OwnerID: ownerID}
	if err := h.repo.Create(ctx, org); err != nil {
		h.logger.Error("create organization failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	response.Created(c, org)
}

// List handles GET /organization. Returns organizations owned by the caller.
func (h *Handler) List(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Forbidden(c, "user not authenticated")
		return
	}
	orgs, err := h.repo.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("list organizations failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if orgs == nil {
		orgs = []models.Organization{}
	}
	response.OK(c, orgs)
}

// GetByID handles GET /organization/:organization_id (owner only, via middleware).
func (h *Handler) GetByID(c *gin.Context) {
	response.OK(c, MustFromContext(c))
}

// Update handles PATCH /organization/:organization_id (owner only, via middleware).
func (h *Handler) Update(c *gin.Context) {
	org := MustFromContext(c)

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Name == nil && req.Phone == nil) {
		response.BadRequest(c, "no data provided for update")
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), org.ID, req.Name, req.Phone)
	if err != nil {
		h.logger.Error("update organization failed", zap.Error(err), zap.String("organization_id", org.ID.String()))
		response.Internal(c, "internal server error")
		return
	}
	if updated == nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /organization/:organization_id (owner only, via middleware).
func (h *Handler) Delete(c *gin.Context) {
	org := MustFromContext(c)
	if err := h.repo.Delete(c.Request.Context(), org.ID); err != nil {
		h.logger.Error("delete organization failed", zap.Error(err), zap.String("organization_id", org.ID.String()))
		response.Internal(c, "internal server error")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// parseID parses the :organization_id route param.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("organization_id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return uuid.Nil, false
	}
	return id, true
}
