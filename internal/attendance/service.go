package attendance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetvo/backend/internal/members"
	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/pkg/apperr"
	"github.com/meetvo/backend/pkg/queue"
)

type eventGetter interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

type memberFinder interface {
	Find(ctx context.Context, orgID uuid.UUID, contact members.Contact) (*models.Member, error)
}

type attendanceStore interface {
	Create(ctx context.Context, a *models.Attendance) error
}

type linkEnqueuer interface {
	EnqueueMemberLink(ctx context.Context, payload queue.MemberLinkPayload) error
}

// RecordRequest carries a single check-in submission. IsFirstTimer is the
// attendee's raw claim token, trusted only for unknown contacts.
type RecordRequest struct {
	Name         string
	Phone        string
	Email        string
	Gender       string
	IsFirstTimer string
}

// Service implements attendance ingestion.
type Service struct {
	events eventGetter
	reg    memberFinder
	store  attendanceStore
	queue  linkEnqueuer
	logger *zap.Logger
}

// NewService creates an attendance ingestion service.
func NewService(events eventGetter, reg memberFinder, store attendanceStore, q linkEnqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{events: events, reg: reg, store: store, queue: q, logger: logger}
}

// Record validates and persists one check-in for the event.
//
// The returned attendance carries the authoritative is_first_timer: false
// whenever a member already matched the contact, the claim otherwise. For a
// brand-new contact the member row is created by a detached job after the
// attendance is persisted; a job failure is logged and retried, never
// surfaced to the caller.
func (s *Service) Record(ctx context.Context, eventID string, req RecordRequest) (*models.Attendance, error) {
	if req.Name == "" || req.Phone == "" || req.Email == "" || req.Gender == "" || req.IsFirstTimer == "" {
		return nil, apperr.Validation("all fields (name, phone, email, gender, is_first_timer) are required")
	}
	claim, err := parseClaim(req.IsFirstTimer)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, apperr.Internal("failed to load event", err)
	}
	if event == nil {
		return nil, apperr.NotFound("event not found")
	}
	if event.IsExpired {
		return nil, apperr.Gone("event is already expired")
	}

	contact := members.NewContact(req.Name, req.Email, req.Phone, req.Gender)
	member, err := s.reg.Find(ctx, event.OrganizationID, contact)
	if err != nil {
		return nil, apperr.Internal("failed to look up member", err)
	}

	// A known contact is never a first-timer, whatever they claimed.
	isFirstTimer := claim
	if member != nil {
		isFirstTimer = false
	}

	a := &models.Attendance{
		EventID:      eventID,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Gender:       req.Gender,
		IsFirstTimer: isFirstTimer,
	}
	if member != nil {
		a.MemberID = &member.ID
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, apperr.Internal("failed to record attendance", err)
	}

	if member == nil {
		payload := queue.MemberLinkPayload{
			AttendanceID:   a.ID,
			OrganizationID: event.OrganizationID,
			Name:           req.Name,
			Phone:          req.Phone,
			Email:          req.Email,
			Gender:         req.Gender,
		}
		if err := s.queue.EnqueueMemberLink(ctx, payload); err != nil {
			// The attendance is already recorded; the link job is best-effort.
			s.logger.Error("enqueue member link failed",
				zap.Error(err),
				zap.String("attendance_id", a.ID.String()),
				zap.String("event_id", eventID))
		}
	}
	return a, nil
}

// parseClaim accepts only true/false tokens, case-insensitively.
func parseClaim(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, apperr.Validation("invalid value for is_first_timer, must be 'true' or 'false'")
	}
}
