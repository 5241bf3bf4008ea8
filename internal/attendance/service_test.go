package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetvo/backend/internal/members"
	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/pkg/apperr"
	"github.com/meetvo/backend/pkg/queue"
)

type fakeEvents struct {
	event *models.Event
	err   error
}

func (f *fakeEvents) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return f.event, f.err
}

type fakeRegistry struct {
	member *models.Member
	err    error
}

func (f *fakeRegistry) Find(ctx context.Context, orgID uuid.UUID, contact members.Contact) (*models.Member, error) {
	return f.member, f.err
}

type fakeAttendanceStore struct {
	created *models.Attendance
	err     error
}

func (f *fakeAttendanceStore) Create(ctx context.Context, a *models.Attendance) error {
	if f.err != nil {
		return f.err
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	f.created = a
	return nil
}

type fakeEnqueuer struct {
	payloads []queue.MemberLinkPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueMemberLink(ctx context.Context, payload queue.MemberLinkPayload) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

func activeEvent() *models.Event {
	return &models.Event{
		ID:             "abc123def",
		OrganizationID: uuid.New(),
		Title:          "sunday service",
		ExpiresAt:      time.Now().Add(time.Hour),
	}
}

func validRequest() RecordRequest {
	return RecordRequest{
		Name:         "Jane Doe",
		Phone:        "5551234567",
		Email:        "jane@example.com",
		Gender:       "female",
		IsFirstTimer: "true",
	}
}

func TestRecordValidatesFields(t *testing.T) {
	svc := NewService(&fakeEvents{event: activeEvent()}, &fakeRegistry{}, &fakeAttendanceStore{}, &fakeEnqueuer{}, nil)

	mutations := map[string]func(*RecordRequest){
		"name":           func(r *RecordRequest) { r.Name = "" },
		"phone":          func(r *RecordRequest) { r.Phone = "" },
		"email":          func(r *RecordRequest) { r.Email = "" },
		"gender":         func(r *RecordRequest) { r.Gender = "" },
		"is_first_timer": func(r *RecordRequest) { r.IsFirstTimer = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, err := svc.Record(context.Background(), "abc123def", req)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestRecordRejectsBadClaim(t *testing.T) {
	svc := NewService(&fakeEvents{event: activeEvent()}, &fakeRegistry{}, &fakeAttendanceStore{}, &fakeEnqueuer{}, nil)

	req := validRequest()
	req.IsFirstTimer = "yes"
	_, err := svc.Record(context.Background(), "abc123def", req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRecordEventNotFound(t *testing.T) {
	svc := NewService(&fakeEvents{}, &fakeRegistry{}, &fakeAttendanceStore{}, &fakeEnqueuer{}, nil)

	_, err := svc.Record(context.Background(), "missing123", validRequest())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRecordExpiredEvent(t *testing.T) {
	ev := activeEvent()
	ev.IsExpired = true
	svc := NewService(&fakeEvents{event: ev}, &fakeRegistry{}, &fakeAttendanceStore{}, &fakeEnqueuer{}, nil)

	_, err := svc.Record(context.Background(), ev.ID, validRequest())
	require.Error(t, err)
	assert.Equal(t, apperr.KindGone, apperr.KindOf(err))
}

func TestRecordKnownMemberOverridesClaim(t *testing.T) {
	ev := activeEvent()
	m := &models.Member{ID: uuid.New(), OrganizationID: ev.OrganizationID, Name: "Jane Doe"}
	enq := &fakeEnqueuer{}
	store := &fakeAttendanceStore{}
	svc := NewService(&fakeEvents{event: ev}, &fakeRegistry{member: m}, store, enq, nil)

	req := validRequest()
	req.IsFirstTimer = "TRUE"
	a, err := svc.Record(context.Background(), ev.ID, req)
	require.NoError(t, err)
	assert.False(t, a.IsFirstTimer)
	require.NotNil(t, a.MemberID)
	assert.Equal(t, m.ID, *a.MemberID)
	// Already linked, nothing for the worker.
	assert.Empty(t, enq.payloads)
}

func TestRecordUnknownContactHonorsClaim(t *testing.T) {
	ev := activeEvent()
	enq := &fakeEnqueuer{}
	svc := NewService(&fakeEvents{event: ev}, &fakeRegistry{}, &fakeAttendanceStore{}, enq, nil)

	a, err := svc.Record(context.Background(), ev.ID, validRequest())
	require.NoError(t, err)
	assert.True(t, a.IsFirstTimer)
	assert.Nil(t, a.MemberID)

	require.Len(t, enq.payloads, 1)
	payload := enq.payloads[0]
	assert.Equal(t, a.ID, payload.AttendanceID)
	assert.Equal(t, ev.OrganizationID, payload.OrganizationID)
	assert.Equal(t, "jane@example.com", payload.Email)
}

func TestRecordEnqueueFailureDoesNotFailCheckin(t *testing.T) {
	ev := activeEvent()
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	svc := NewService(&fakeEvents{event: ev}, &fakeRegistry{}, &fakeAttendanceStore{}, enq, nil)

	a, err := svc.Record(context.Background(), ev.ID, validRequest())
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestRecordStoreFailure(t *testing.T) {
	ev := activeEvent()
	store := &fakeAttendanceStore{err: errors.New("connection refused")}
	svc := NewService(&fakeEvents{event: ev}, &fakeRegistry{}, store, &fakeEnqueuer{}, nil)

	_, err := svc.Record(context.Background(), ev.ID, validRequest())
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
