// Package analytics derives time-windowed, deduplicated, and classified
// statistics from the events, attendance, and members tables. All operations
// are read-only; windowing, grouping, and classification live here so the
// contract does not depend on any particular query language.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/meetvo/backend/internal/models"
)

// Store is the read-only slice of storage the engine aggregates over.
type Store interface {
	EventsByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error)
	EventsCreatedBetween(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.Event, error)
	AttendanceForEventsBetween(ctx context.Context, eventIDs []string, start, end time.Time) ([]models.Attendance, error)
	AttendanceBefore(ctx context.Context, eventIDs []string, before time.Time) ([]models.Attendance, error)
	AttendanceCountsByEvent(ctx context.Context, eventIDs []string) (map[string]int, error)
	FirstAttendanceTimes(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]time.Time, error)
	MembersByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Member, error)
	CountMembersByOrganization(ctx context.Context, orgID uuid.UUID) (int, error)
	MemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	ActiveMemberIDsSince(ctx context.Context, orgID uuid.UUID, cutoff time.Time) ([]uuid.UUID, error)
	AttendanceHistoryByContact(ctx context.Context, email, phone *string, name string) ([]AttendanceRecord, error)
}

// TrendPoint is one day with at least one check-in. Days without attendance
// are absent, never zero-filled.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// EventFirstTimers is the per-event slice of first-timer counts.
type EventFirstTimers struct {
	EventID         string `json:"event_id"`
	EventTitle      string `json:"event_title"`
	Date            string `json:"date"`
	FirstTimerCount int    `json:"first_timer_count"`
}

// FirstTimerStats is per-event first-timer counts plus the grand total.
type FirstTimerStats struct {
	Total  int                `json:"total"`
	Events []EventFirstTimers `json:"events"`
}

// GenderDistribution counts members with gender exactly "male" or "female";
// other and blank values belong to neither bucket.
type GenderDistribution struct {
	Male   int `json:"male"`
	Female int `json:"female"`
}

// EventBreakdown is the attendance count for one event.
type EventBreakdown struct {
	EventID         string `json:"event_id"`
	Title           string `json:"title"`
	Date            string `json:"date"`
	AttendanceCount int    `json:"attendance_count"`
}

// VisitorComparison holds a windowed unique-visitor count next to the
// all-time member count. The two are deliberately not on the same time base.
type VisitorComparison struct {
	UniqueVisitors int `json:"unique_visitors"`
	TotalMembers   int `json:"total_members"`
}

// RetentionStats holds three independent counters over the members who
// attended within the window; a member may count as both returning and
// retained.
type RetentionStats struct {
	New       int `json:"new"`
	Returning int `json:"returning"`
	Retained  int `json:"retained"`
}

// EventRef is the event summary attached to an attendance history row.
type EventRef struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceRecord is an attendance row enriched with its event.
type AttendanceRecord struct {
	models.Attendance
	Event EventRef `json:"event"`
}

// MemberProfile is a member with their full attendance history.
type MemberProfile struct {
	Member            models.Member      `json:"member"`
	AttendanceHistory []AttendanceRecord `json:"attendance_history"`
}

// Engine runs the aggregation queries. It is stateless: every call is an
// independent read-only unit of work.
type Engine struct {
	store Store
}

// NewEngine creates an analytics engine over the store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// AttendanceTrend counts check-ins per calendar day, over events created
// within the range and attendance recorded within the range.
func (e *Engine) AttendanceTrend(ctx context.Context, orgID uuid.UUID, r DateRange) ([]TrendPoint, error) {
	events, err := e.store.EventsCreatedBetween(ctx, orgID, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []TrendPoint{}, nil
	}
	atts, err := e.store.AttendanceForEventsBetween(ctx, eventIDs(events), r.Start, r.End)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, a := range atts {
		counts[dayKey(a.CreatedAt)]++
	}
	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	trend := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		trend = append(trend, TrendPoint{Date: day, Count: counts[day]})
	}
	return trend, nil
}

// FirstTimerCounts groups first-timer check-ins within the range by event.
// Events with no first-timers in range are absent from the list.
func (e *Engine) FirstTimerCounts(ctx context.Context, orgID uuid.UUID, r DateRange) (*FirstTimerStats, error) {
	events, err := e.store.EventsByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	stats := &FirstTimerStats{Events: []EventFirstTimers{}}
	if len(events) == 0 {
		return stats, nil
	}
	atts, err := e.store.AttendanceForEventsBetween(ctx, eventIDs(events), r.Start, r.End)
	if err != nil {
		return nil, err
	}

	perEvent := make(map[string]int)
	for _, a := range atts {
		if a.IsFirstTimer {
			perEvent[a.EventID]++
		}
	}
	// Events come sorted newest first; keep that order in the answer.
	for _, ev := range events {
		n, ok := perEvent[ev.ID]
		if !ok {
			continue
		}
		stats.Events = append(stats.Events, EventFirstTimers{
			EventID:         ev.ID,
			EventTitle:      ev.Title,
			Date:            dayKey(ev.CreatedAt),
			FirstTimerCount: n,
		})
		stats.Total += n
	}
	return stats, nil
}

// InactiveMembers lists members with no attendance on any event whose
// expires_at is on or after the cutoff derived from the timeframe token.
func (e *Engine) InactiveMembers(ctx context.Context, orgID uuid.UUID, timeframe string, now time.Time) ([]models.Member, error) {
	cutoff, err := ParseCutoff(timeframe, now)
	if err != nil {
		return nil, err
	}
	all, err := e.store.MembersByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	activeIDs, err := e.store.ActiveMemberIDsSince(ctx, orgID, cutoff)
	if err != nil {
		return nil, err
	}

	active := make(map[uuid.UUID]struct{}, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = struct{}{}
	}
	inactive := []models.Member{}
	for _, m := range all {
		if _, ok := active[m.ID]; !ok {
			inactive = append(inactive, m)
		}
	}
	return inactive, nil
}

// MemberProfile returns the member and every attendance matching their email
// OR phone OR exact name, newest first. The name fallback is deliberately
// permissive: attendance rows may predate member linkage. A missing member
// yields (nil, nil), not an error.
func (e *Engine) MemberProfile(ctx context.Context, memberID uuid.UUID) (*MemberProfile, error) {
	m, err := e.store.MemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	history, err := e.store.AttendanceHistoryByContact(ctx, m.Email, m.Phone, m.Name)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []AttendanceRecord{}
	}
	return &MemberProfile{Member: *m, AttendanceHistory: history}, nil
}

// Genders counts members whose gender is exactly "male" or "female".
func (e *Engine) Genders(ctx context.Context, orgID uuid.UUID) (*GenderDistribution, error) {
	all, err := e.store.MembersByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	var dist GenderDistribution
	for _, m := range all {
		if m.Gender == nil {
			continue
		}
		switch *m.Gender {
		case "male":
			dist.Male++
		case "female":
			dist.Female++
		}
	}
	return &dist, nil
}

// EventAttendanceBreakdown counts linked attendance per event, every event
// included, newest events first.
func (e *Engine) EventAttendanceBreakdown(ctx context.Context, orgID uuid.UUID) ([]EventBreakdown, error) {
	events, err := e.store.EventsByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []EventBreakdown{}, nil
	}
	counts, err := e.store.AttendanceCountsByEvent(ctx, eventIDs(events))
	if err != nil {
		return nil, err
	}

	breakdown := make([]EventBreakdown, 0, len(events))
	for _, ev := range events {
		breakdown = append(breakdown, EventBreakdown{
			EventID:         ev.ID,
			Title:           ev.Title,
			Date:            dayKey(ev.CreatedAt),
			AttendanceCount: counts[ev.ID],
		})
	}
	return breakdown, nil
}

// UniqueVisitorsVsMembers counts distinct linked visitors within the range
// against the all-time member count. The member count is intentionally not
// windowed; the mismatch is part of the contract.
func (e *Engine) UniqueVisitorsVsMembers(ctx context.Context, orgID uuid.UUID, r DateRange) (*VisitorComparison, error) {
	total, err := e.store.CountMembersByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	cmp := &VisitorComparison{TotalMembers: total}

	events, err := e.store.EventsByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return cmp, nil
	}
	atts, err := e.store.AttendanceForEventsBetween(ctx, eventIDs(events), r.Start, r.End)
	if err != nil {
		return nil, err
	}
	cmp.UniqueVisitors = len(distinctMemberIDs(atts))
	return cmp, nil
}

// Retention classifies the members who attended within the range:
// new when their globally-first attendance falls inside the range,
// returning otherwise; retained when they have at least one attendance on
// the organization's events strictly before the window. new+returning always
// equals the number of distinct attended members.
func (e *Engine) Retention(ctx context.Context, orgID uuid.UUID, r DateRange) (*RetentionStats, error) {
	stats := &RetentionStats{}
	events, err := e.store.EventsByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return stats, nil
	}
	ids := eventIDs(events)

	atts, err := e.store.AttendanceForEventsBetween(ctx, ids, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	attended := distinctMemberIDs(atts)
	if len(attended) == 0 {
		return stats, nil
	}

	firsts, err := e.store.FirstAttendanceTimes(ctx, attended)
	if err != nil {
		return nil, err
	}
	prior, err := e.store.AttendanceBefore(ctx, ids, r.Start)
	if err != nil {
		return nil, err
	}
	priorSet := make(map[uuid.UUID]struct{})
	for _, id := range distinctMemberIDs(prior) {
		priorSet[id] = struct{}{}
	}

	for _, id := range attended {
		first, ok := firsts[id]
		if !ok || r.Contains(first) {
			stats.New++
		} else {
			stats.Returning++
		}
		if _, ok := priorSet[id]; ok {
			stats.Retained++
		}
	}
	return stats, nil
}

// MembersByOrganization returns the full member list for the dashboard.
func (e *Engine) MembersByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Member, error) {
	list, err := e.store.MembersByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Member{}
	}
	return list, nil
}

func eventIDs(events []models.Event) []string {
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids
}

// distinctMemberIDs returns the unique non-null member ids in order of first
// appearance. Unlinked rows (NULL member_id) are excluded from visitor
// deduplication.
func distinctMemberIDs(atts []models.Attendance) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(atts))
	var ids []uuid.UUID
	for _, a := range atts {
		if a.MemberID == nil {
			continue
		}
		if _, ok := seen[*a.MemberID]; ok {
			continue
		}
		seen[*a.MemberID] = struct{}{}
		ids = append(ids, *a.MemberID)
	}
	return ids
}
