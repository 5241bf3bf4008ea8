// Package events implements event lifecycle: creation, listing, updates,
// explicit expiry, and the periodic expiry sweep.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetvo/backend/internal/models"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, organization_id, title, expires_at, is_expired, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.ExpiresAt, &e.IsExpired, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event with a pre-generated ID.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, organization_id, title, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING is_expired, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.OrganizationID, e.Title, e.ExpiresAt).
		Scan(&e.IsExpired, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByOrganization returns all events of an organization, newest first.
// When activeOnly is set, expired events are excluded.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE organization_id = $1`
	if activeOnly {
		q += ` AND is_expired = FALSE`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
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

// Update updates title and expires_at; nil fields are left unchanged. The
// is_expired guard is part of the UPDATE itself, so an event the sweep just
// expired cannot be edited: the caller gets nil back and must re-check.
func (r *Repository) Update(ctx context.Context, id string, title *string, expiresAt *time.Time) (*models.Event, error) {
	const q = `UPDATE events SET title = COALESCE($1, title), expires_at = COALESCE($2, expires_at), updated_at = NOW()
		WHERE id = $3 AND is_expired = FALSE
		RETURNING ` + eventColumns
	e, err := scanEvent(r.pool.QueryRow(ctx, q, title, expiresAt, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an event by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// Expire explicitly expires an event: is_expired=true, expires_at=now.
// Idempotent toward an already-expired event.
func (r *Repository) Expire(ctx context.Context, id string) (*models.Event, error) {
	const q = `UPDATE events SET is_expired = TRUE, expires_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns
	e, err := scanEvent(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ExpireOverdue flips is_expired for every event whose expires_at has passed.
// Returns the number of events flipped.
func (r *Repository) ExpireOverdue(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET is_expired = TRUE, updated_at = NOW()
		WHERE expires_at < NOW() AND is_expired = FALSE`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
