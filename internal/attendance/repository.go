// Package attendance records check-ins: validation, first-timer resolution,
// and the detached member-link side effect.
package attendance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetvo/backend/internal/models"
)

// Repository handles attendance persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const attendanceColumns = `id, event_id, member_id, name, phone, email, gender, is_first_timer, created_at`

// Create inserts an attendance row. Rows are immutable after creation except
// for the member_id backfill done by the link worker.
func (r *Repository) Create(ctx context.Context, a *models.Attendance) error {
	const q = `INSERT INTO attendance (id, event_id, member_id, name, phone, email, gender, is_first_timer)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, a.EventID, a.MemberID, a.Name, a.Phone, a.Email, a.Gender, a.IsFirstTimer).
		Scan(&a.ID, &a.CreatedAt)
}

// GetByID returns an attendance row by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendance WHERE id = $1`
	var a models.Attendance
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.EventID, &a.MemberID, &a.Name, &a.Phone, &a.Email, &a.Gender, &a.IsFirstTimer, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByEvent returns attendance rows for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendance WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
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

// LinkMember backfills member_id on an attendance row. Only rows still
// unlinked are touched, so replayed jobs are harmless.
func (r *Repository) LinkMember(ctx context.Context, attendanceID, memberID uuid.UUID) error {
	const q = `UPDATE attendance SET member_id = $1 WHERE id = $2 AND member_id IS NULL`
	_, err := r.pool.Exec(ctx, q, memberID, attendanceID)
	return err
}
