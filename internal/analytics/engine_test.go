package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/pkg/apperr"
)

// fakeStore serves canned rows and applies the time windows itself, so the
// engine's windowing arguments are exercised, not just its grouping.
type fakeStore struct {
	events      []models.Event
	attendance  []models.Attendance
	counts      map[string]int
	firsts      map[uuid.UUID]time.Time
	members     []models.Member
	memberCount int
	member      *models.Member
	activeIDs   []uuid.UUID
	history     []AttendanceRecord
}

func (f *fakeStore) EventsByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	return f.events, nil
}

func (f *fakeStore) EventsCreatedBetween(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.Event, error) {
	var out []models.Event
	for _, ev := range f.events {
		if !ev.CreatedAt.Before(start) && !ev.CreatedAt.After(end) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) AttendanceForEventsBetween(ctx context.Context, eventIDs []string, start, end time.Time) ([]models.Attendance, error) {
	ids := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = struct{}{}
	}
	var out []models.Attendance
	for _, a := range f.attendance {
		if _, ok := ids[a.EventID]; !ok {
			continue
		}
		if !a.CreatedAt.Before(start) && !a.CreatedAt.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) AttendanceBefore(ctx context.Context, eventIDs []string, before time.Time) ([]models.Attendance, error) {
	ids := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = struct{}{}
	}
	var out []models.Attendance
	for _, a := range f.attendance {
		if _, ok := ids[a.EventID]; !ok {
			continue
		}
		if a.CreatedAt.Before(before) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) AttendanceCountsByEvent(ctx context.Context, eventIDs []string) (map[string]int, error) {
	return f.counts, nil
}

func (f *fakeStore) FirstAttendanceTimes(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]time.Time, error) {
	return f.firsts, nil
}

func (f *fakeStore) MembersByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Member, error) {
	return f.members, nil
}

func (f *fakeStore) CountMembersByOrganization(ctx context.Context, orgID uuid.UUID) (int, error) {
	return f.memberCount, nil
}

func (f *fakeStore) MemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return f.member, nil
}

func (f *fakeStore) ActiveMemberIDsSince(ctx context.Context, orgID uuid.UUID, cutoff time.Time) ([]uuid.UUID, error) {
	return f.activeIDs, nil
}

func (f *fakeStore) AttendanceHistoryByContact(ctx context.Context, email, phone *string, name string) ([]AttendanceRecord, error) {
	return f.history, nil
}

var (
	testOrg   = uuid.New()
	testRange = DateRange{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}
)

func at(day, hour int) time.Time {
	return time.Date(2024, 6, day, hour, 0, 0, 0, time.UTC)
}

func event(id string, created time.Time) models.Event {
	return models.Event{ID: id, OrganizationID: testOrg, Title: "event " + id, CreatedAt: created}
}

func checkin(eventID string, memberID *uuid.UUID, firstTimer bool, created time.Time) models.Attendance {
	return models.Attendance{
		ID:           uuid.New(),
		EventID:      eventID,
		MemberID:     memberID,
		IsFirstTimer: firstTimer,
		CreatedAt:    created,
	}
}

func member(name string, gender *string) models.Member {
	return models.Member{ID: uuid.New(), OrganizationID: testOrg, Name: name, Gender: gender}
}

func strPtr(s string) *string { return &s }

func TestAttendanceTrend(t *testing.T) {
	store := &fakeStore{
		events: []models.Event{
			event("aaa111aaa", at(5, 9)),
			event("bbb222bbb", at(12, 9)),
			// Created before the window, its check-ins never count.
			event("ccc333ccc", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		},
		attendance: []models.Attendance{
			checkin("aaa111aaa", nil, false, at(5, 10)),
			checkin("aaa111aaa", nil, false, at(5, 11)),
			checkin("bbb222bbb", nil, false, at(12, 10)),
			checkin("ccc333ccc", nil, false, at(5, 12)),
			// In-window event, out-of-window check-in.
			checkin("aaa111aaa", nil, false, time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)),
		},
	}
	engine := NewEngine(store)

	trend, err := engine.AttendanceTrend(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Equal(t, []TrendPoint{
		{Date: "2024-06-05", Count: 2},
		{Date: "2024-06-12", Count: 1},
	}, trend)
}

func TestAttendanceTrendNoEvents(t *testing.T) {
	engine := NewEngine(&fakeStore{})

	trend, err := engine.AttendanceTrend(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Empty(t, trend)
	assert.NotNil(t, trend)
}

func TestFirstTimerCounts(t *testing.T) {
	store := &fakeStore{
		events: []models.Event{
			event("bbb222bbb", at(12, 9)),
			event("aaa111aaa", at(5, 9)),
		},
		attendance: []models.Attendance{
			checkin("aaa111aaa", nil, true, at(5, 10)),
			checkin("aaa111aaa", nil, true, at(5, 11)),
			checkin("aaa111aaa", nil, false, at(5, 12)),
			checkin("bbb222bbb", nil, false, at(12, 10)),
			// First-timer outside the window, not counted.
			checkin("aaa111aaa", nil, true, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
	engine := NewEngine(store)

	stats, err := engine.FirstTimerCounts(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	// Events with no first-timers in range are absent, event order preserved.
	require.Len(t, stats.Events, 1)
	assert.Equal(t, EventFirstTimers{
		EventID:         "aaa111aaa",
		EventTitle:      "event aaa111aaa",
		Date:            "2024-06-05",
		FirstTimerCount: 2,
	}, stats.Events[0])
}

func TestFirstTimerCountsNoEvents(t *testing.T) {
	engine := NewEngine(&fakeStore{})

	stats, err := engine.FirstTimerCounts(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.Events)
}

func TestInactiveMembers(t *testing.T) {
	active := member("active", nil)
	idle1 := member("idle one", nil)
	idle2 := member("idle two", nil)
	store := &fakeStore{
		members:   []models.Member{active, idle1, idle2},
		activeIDs: []uuid.UUID{active.ID},
	}
	engine := NewEngine(store)

	inactive, err := engine.InactiveMembers(context.Background(), testOrg, "1m", testNow)
	require.NoError(t, err)
	assert.Equal(t, []models.Member{idle1, idle2}, inactive)
}

func TestInactiveMembersBadTimeframe(t *testing.T) {
	engine := NewEngine(&fakeStore{})

	_, err := engine.InactiveMembers(context.Background(), testOrg, "next tuesday", testNow)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMemberProfile(t *testing.T) {
	m := member("jane", strPtr("female"))
	store := &fakeStore{
		member: &m,
		history: []AttendanceRecord{
			{Attendance: checkin("aaa111aaa", &m.ID, true, at(5, 10))},
		},
	}
	engine := NewEngine(store)

	profile, err := engine.MemberProfile(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, m, profile.Member)
	assert.Len(t, profile.AttendanceHistory, 1)
}

func TestMemberProfileMissing(t *testing.T) {
	engine := NewEngine(&fakeStore{})

	profile, err := engine.MemberProfile(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestMemberProfileEmptyHistory(t *testing.T) {
	m := member("new joiner", nil)
	engine := NewEngine(&fakeStore{member: &m})

	profile, err := engine.MemberProfile(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.NotNil(t, profile.AttendanceHistory)
	assert.Empty(t, profile.AttendanceHistory)
}

func TestGenders(t *testing.T) {
	store := &fakeStore{
		members: []models.Member{
			member("a", strPtr("male")),
			member("b", strPtr("female")),
			member("c", strPtr("female")),
			member("d", strPtr("nonbinary")),
			member("e", nil),
		},
	}
	engine := NewEngine(store)

	dist, err := engine.Genders(context.Background(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, &GenderDistribution{Male: 1, Female: 2}, dist)
}

func TestEventAttendanceBreakdown(t *testing.T) {
	store := &fakeStore{
		events: []models.Event{
			event("bbb222bbb", at(12, 9)),
			event("aaa111aaa", at(5, 9)),
		},
		counts: map[string]int{"aaa111aaa": 3},
	}
	engine := NewEngine(store)

	breakdown, err := engine.EventAttendanceBreakdown(context.Background(), testOrg)
	require.NoError(t, err)
	// Zero-attendance events still appear, newest first.
	assert.Equal(t, []EventBreakdown{
		{EventID: "bbb222bbb", Title: "event bbb222bbb", Date: "2024-06-12", AttendanceCount: 0},
		{EventID: "aaa111aaa", Title: "event aaa111aaa", Date: "2024-06-05", AttendanceCount: 3},
	}, breakdown)
}

func TestUniqueVisitorsVsMembers(t *testing.T) {
	m1, m2 := uuid.New(), uuid.New()
	store := &fakeStore{
		memberCount: 40,
		events:      []models.Event{event("aaa111aaa", at(5, 9))},
		attendance: []models.Attendance{
			checkin("aaa111aaa", &m1, false, at(5, 10)),
			checkin("aaa111aaa", &m1, false, at(6, 10)),
			checkin("aaa111aaa", &m2, false, at(7, 10)),
			// Unlinked check-in has no identity to deduplicate on.
			checkin("aaa111aaa", nil, true, at(8, 10)),
		},
	}
	engine := NewEngine(store)

	cmp, err := engine.UniqueVisitorsVsMembers(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Equal(t, &VisitorComparison{UniqueVisitors: 2, TotalMembers: 40}, cmp)
}

func TestUniqueVisitorsNoEvents(t *testing.T) {
	engine := NewEngine(&fakeStore{memberCount: 7})

	cmp, err := engine.UniqueVisitorsVsMembers(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Equal(t, &VisitorComparison{UniqueVisitors: 0, TotalMembers: 7}, cmp)
}

func TestRetention(t *testing.T) {
	newcomer, regular := uuid.New(), uuid.New()
	before := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		events: []models.Event{
			event("aaa111aaa", at(5, 9)),
			event("old000old", before),
		},
		attendance: []models.Attendance{
			checkin("aaa111aaa", &newcomer, true, at(5, 10)),
			checkin("aaa111aaa", &regular, false, at(5, 11)),
			checkin("old000old", &regular, true, before),
		},
		firsts: map[uuid.UUID]time.Time{
			newcomer: at(5, 10),
			regular:  before,
		},
	}
	engine := NewEngine(store)

	stats, err := engine.Retention(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Equal(t, &RetentionStats{New: 1, Returning: 1, Retained: 1}, stats)
	// Every attended member is classified exactly once as new or returning.
	assert.Equal(t, 2, stats.New+stats.Returning)
}

func TestRetentionNoAttendance(t *testing.T) {
	store := &fakeStore{events: []models.Event{event("aaa111aaa", at(5, 9))}}
	engine := NewEngine(store)

	stats, err := engine.Retention(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Equal(t, &RetentionStats{}, stats)
}

func TestRetentionMissingFirstCountsAsNew(t *testing.T) {
	attendee := uuid.New()
	store := &fakeStore{
		events: []models.Event{event("aaa111aaa", at(5, 9))},
		attendance: []models.Attendance{
			checkin("aaa111aaa", &attendee, true, at(5, 10)),
		},
		firsts: map[uuid.UUID]time.Time{},
	}
	engine := NewEngine(store)

	stats, err := engine.Retention(context.Background(), testOrg, testRange)
	require.NoError(t, err)
	assert.Equal(t, &RetentionStats{New: 1}, stats)
}
