package analytics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetvo/backend/internal/organizations"
	"github.com/meetvo/backend/pkg/response"
)

// Handler handles the analytics HTTP endpoints. Organization ownership is
// enforced by organizations.RequireOwner on org-scoped routes.
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, logger: logger}
}

// rangeFromQuery builds the window from start_date/end_date query params,
// falling back to the last 30 days.
func rangeFromQuery(c *gin.Context) DateRange {
	return ParseRange(c.Query("start_date"), c.Query("end_date"), time.Now().UTC())
}

// Trend handles GET /analytics/organization/:organization_id/trend.
func (h *Handler) Trend(c *gin.Context) {
	org := organizations.MustFromContext(c)
	trend, err := h.engine.AttendanceTrend(c.Request.Context(), org.ID, rangeFromQuery(c))
	if err != nil {
		h.fail(c, "attendance trend", err)
		return
	}
	response.OK(c, trend)
}

// FirstTimers handles GET /analytics/organization/:organization_id/first-timers.
func (h *Handler) FirstTimers(c *gin.Context) {
	org := organizations.MustFromContext(c)
	stats, err := h.engine.FirstTimerCounts(c.Request.Context(), org.ID, rangeFromQuery(c))
	if err != nil {
		h.fail(c, "first-timer stats", err)
		return
	}
	response.OK(c, stats)
}

// Inactive handles GET /analytics/organization/:organization_id/inactive?timeframe=1m.
func (h *Handler) Inactive(c *gin.Context) {
	org := organizations.MustFromContext(c)
	list, err := h.engine.InactiveMembers(c.Request.Context(), org.ID, c.Query("timeframe"), time.Now().UTC())
	if err != nil {
		h.fail(c, "inactive members", err)
		return
	}
	response.OK(c, list)
}

// MemberProfile handles GET /analytics/member/:member_id/profile. A missing
// member returns null data, not an error.
func (h *Handler) MemberProfile(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("member_id"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	profile, err := h.engine.MemberProfile(c.Request.Context(), memberID)
	if err != nil {
		h.fail(c, "member profile", err)
		return
	}
	if profile == nil {
		response.OK(c, nil)
		return
	}
	response.OK(c, profile)
}

// Gender handles GET /analytics/organization/:organization_id/gender.
func (h *Handler) Gender(c *gin.Context) {
	org := organizations.MustFromContext(c)
	dist, err := h.engine.Genders(c.Request.Context(), org.ID)
	if err != nil {
		h.fail(c, "gender distribution", err)
		return
	}
	response.OK(c, dist)
}

// EventBreakdown handles GET /analytics/organization/:organization_id/event-breakdown.
func (h *Handler) EventBreakdown(c *gin.Context) {
	org := organizations.MustFromContext(c)
	breakdown, err := h.engine.EventAttendanceBreakdown(c.Request.Context(), org.ID)
	if err != nil {
		h.fail(c, "event breakdown", err)
		return
	}
	response.OK(c, breakdown)
}

// UniqueVisitors handles GET /analytics/organization/:organization_id/unique-visitors.
func (h *Handler) UniqueVisitors(c *gin.Context) {
	org := organizations.MustFromContext(c)
	cmp, err := h.engine.UniqueVisitorsVsMembers(c.Request.Context(), org.ID, rangeFromQuery(c))
	if err != nil {
		h.fail(c, "unique visitors", err)
		return
	}
	response.OK(c, cmp)
}

// Retention handles GET /analytics/organization/:organization_id/retention.
func (h *Handler) Retention(c *gin.Context) {
	org := organizations.MustFromContext(c)
	stats, err := h.engine.Retention(c.Request.Context(), org.ID, rangeFromQuery(c))
	if err != nil {
		h.fail(c, "retention stats", err)
		return
	}
	response.OK(c, stats)
}

// Members handles GET /analytics/organization/:organization_id. Full member list.
func (h *Handler) Members(c *gin.Context) {
	org := organizations.MustFromContext(c)
	list, err := h.engine.MembersByOrganization(c.Request.Context(), org.ID)
	if err != nil {
		h.fail(c, "members", err)
		return
	}
	response.OK(c, list)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.logger.Error("analytics query failed", zap.String("op", op), zap.Error(err))
	response.Error(c, err)
}
