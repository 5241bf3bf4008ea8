package attendance

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/pkg/response"
)

// recordBody is the wire shape for POST /attendance/:event_id. is_first_timer
// arrives either as a JSON boolean or as a quoted token, so it is captured
// raw and normalized before validation.
type recordBody struct {
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email"`
	Gender       string          `json:"gender"`
	IsFirstTimer json.RawMessage `json:"is_first_timer"`
}

// Handler handles attendance HTTP endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	logger  *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(service *Service, repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

// Record handles POST /attendance/:event_id. Public: attendees self-register.
func (h *Handler) Record(c *gin.Context) {
	var body recordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	req := RecordRequest{
		Name:         body.Name,
		Phone:        body.Phone,
		Email:        body.Email,
		Gender:       body.Gender,
		IsFirstTimer: rawToken(body.IsFirstTimer),
	}
	a, err := h.service.Record(c.Request.Context(), c.Param("event_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// GetByID handles GET /attendance/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendance id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get attendance failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if a == nil {
		response.NotFound(c, "attendance record not found")
		return
	}
	response.OK(c, a)
}

// ListByEvent handles GET /attendance/event/:event_id.
func (h *Handler) ListByEvent(c *gin.Context) {
	list, err := h.repo.ListByEvent(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		h.logger.Error("list attendance failed", zap.Error(err))
		response.Internal(c, "internal server error")
		return
	}
	if list == nil {
		list = []models.Attendance{}
	}
	response.OK(c, list)
}

// rawToken renders a raw JSON value as a bare token: booleans stay as-is,
// strings lose their quotes, absent values become empty.
func rawToken(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}
