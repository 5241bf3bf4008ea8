package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetvo/backend/internal/models"
)

// Repository implements Store over PostgreSQL. Every query is read-only.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, organization_id, title, expires_at, is_expired, created_at, updated_at`

func (r *Repository) queryEvents(ctx context.Context, q string, args ...interface{}) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.ExpiresAt, &e.IsExpired, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// EventsByOrganization returns all events of the organization, newest first.
func (r *Repository) EventsByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE organization_id = $1 ORDER BY created_at DESC`
	return r.queryEvents(ctx, q, orgID)
}

// EventsCreatedBetween returns events of the organization created within [start, end].
func (r *Repository) EventsCreatedBetween(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE organization_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at DESC`
	return r.queryEvents(ctx, q, orgID, start, end)
}

const attendanceColumns = `id, event_id, member_id, name, phone, email, gender, is_first_timer, created_at`

func (r *Repository) queryAttendance(ctx context.Context, q string, args ...interface{}) ([]models.Attendance, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Attendance
	for rows.Next() {
		var a models.Attendance
		if err := rows.Scan(&a.ID, &a.EventID, &a.MemberID, &a.Name, &a.Phone, &a.Email, &a.Gender, &a.IsFirstTimer, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// AttendanceForEventsBetween returns attendance on the events created within [start, end].
func (r *Repository) AttendanceForEventsBetween(ctx context.Context, eventIDs []string, start, end time.Time) ([]models.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendance
		WHERE event_id = ANY($1) AND created_at BETWEEN $2 AND $3
		ORDER BY created_at`
	return r.queryAttendance(ctx, q, eventIDs, start, end)
}

// AttendanceBefore returns attendance on the events strictly before the instant.
func (r *Repository) AttendanceBefore(ctx context.Context, eventIDs []string, before time.Time) ([]models.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendance
		WHERE event_id = ANY($1) AND created_at < $2
		ORDER BY created_at`
	return r.queryAttendance(ctx, q, eventIDs, before)
}

// AttendanceCountsByEvent returns per-event attendance counts. Events with no
// attendance are simply absent from the map.
func (r *Repository) AttendanceCountsByEvent(ctx context.Context, eventIDs []string) (map[string]int, error) {
	const q = `SELECT event_id, COUNT(*) FROM attendance WHERE event_id = ANY($1) GROUP BY event_id`
	rows, err := r.pool.Query(ctx, q, eventIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// FirstAttendanceTimes returns each member's globally-first attendance time,
// across all organizations and events.
func (r *Repository) FirstAttendanceTimes(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]time.Time, error) {
	const q = `SELECT member_id, MIN(created_at) FROM attendance WHERE member_id = ANY($1) GROUP BY member_id`
	rows, err := r.pool.Query(ctx, q, memberIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	firsts := make(map[uuid.UUID]time.Time)
	for rows.Next() {
		var id uuid.UUID
		var t time.Time
		if err := rows.Scan(&id, &t); err != nil {
			return nil, err
		}
		firsts[id] = t
	}
	return firsts, rows.Err()
}

const memberColumns = `id, organization_id, name, email, phone, gender, created_at`

// MembersByOrganization returns all members of the organization, newest first.
func (r *Repository) MembersByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members WHERE organization_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.Name, &m.Email, &m.Phone, &m.Gender, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CountMembersByOrganization returns the all-time member count.
func (r *Repository) CountMembersByOrganization(ctx context.Context, orgID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE organization_id = $1`, orgID).Scan(&n)
	return n, err
}

// MemberByID returns a member by ID, or nil when absent.
func (r *Repository) MemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	var m models.Member
	err := r.pool.QueryRow(ctx, q, id).Scan(&m.ID, &m.OrganizationID, &m.Name, &m.Email, &m.Phone, &m.Gender, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ActiveMemberIDsSince returns members of the organization with at least one
// attendance whose event expires on or after the cutoff.
func (r *Repository) ActiveMemberIDsSince(ctx context.Context, orgID uuid.UUID, cutoff time.Time) ([]uuid.UUID, error) {
	const q = `SELECT DISTINCT a.member_id
		FROM attendance a
		INNER JOIN events e ON e.id = a.event_id
		WHERE e.organization_id = $1 AND a.member_id IS NOT NULL AND e.expires_at >= $2`
	rows, err := r.pool.Query(ctx, q, orgID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AttendanceHistoryByContact returns attendance matching the email OR phone
// OR exact name, enriched with the event, newest first. Nil email/phone are
// excluded from the match rather than matching NULL columns.
func (r *Repository) AttendanceHistoryByContact(ctx context.Context, email, phone *string, name string) ([]AttendanceRecord, error) {
	const q = `SELECT a.id, a.event_id, a.member_id, a.name, a.phone, a.email, a.gender, a.is_first_timer, a.created_at,
			e.id, e.title, e.created_at
		FROM attendance a
		INNER JOIN events e ON e.id = a.event_id
		WHERE ($1::text IS NOT NULL AND a.email = $1)
			OR ($2::text IS NOT NULL AND a.phone = $2)
			OR a.name = $3
		ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, q, email, phone, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []AttendanceRecord
	for rows.Next() {
		var rec AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.MemberID, &rec.Name, &rec.Phone, &rec.Email, &rec.Gender, &rec.IsFirstTimer, &rec.CreatedAt,
			&rec.Event.ID, &rec.Event.Title, &rec.Event.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
