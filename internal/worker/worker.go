package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetvo/backend/internal/members"
	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/pkg/queue"
)

type memberRegistry interface {
	FindOrCreate(ctx context.Context, orgID uuid.UUID, contact members.Contact) (*models.Member, bool, error)
}

type attendanceLinker interface {
	LinkMember(ctx context.Context, attendanceID, memberID uuid.UUID) error
}

// MemberLinkProcessor processes member-link jobs: resolve or create the
// member for a check-in and backfill attendance.member_id. Failures here
// never touch the check-in response the attendee already received.
type MemberLinkProcessor struct {
	registry   memberRegistry
	attendance attendanceLinker
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewMemberLinkProcessor creates a member-link processor.
func NewMemberLinkProcessor(registry memberRegistry, attendance attendanceLinker, q *queue.Queue, logger *zap.Logger) *MemberLinkProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberLinkProcessor{registry: registry, attendance: attendance, queue: q, logger: logger}
}

// Process executes one member-link job.
func (p *MemberLinkProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeMemberLink {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.MemberLinkPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	contact := members.NewContact(payload.Name, payload.Email, payload.Phone, payload.Gender)
	member, created, err := p.registry.FindOrCreate(ctx, payload.OrganizationID, contact)
	if err != nil {
		return fmt.Errorf("find or create member: %w", err)
	}
	if err := p.attendance.LinkMember(ctx, payload.AttendanceID, member.ID); err != nil {
		return fmt.Errorf("link attendance: %w", err)
	}

	p.logger.Info("member linked",
		zap.String("attendance_id", payload.AttendanceID.String()),
		zap.String("member_id", member.ID.String()),
		zap.Bool("created", created))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *MemberLinkProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("member link worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
