package organizations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetvo/backend/internal/models"
)

// Repository handles organization persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new organization.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (id, name, phone, owner_id)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, org.Name, org.Phone, org.OwnerID).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

// GetByID returns an organization by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, phone, owner_id, created_at, updated_at FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&org.ID, &org.Name, &org.Phone, &org.OwnerID, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListByOwner returns all organizations owned by the user.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Organization, error) {
	const q = `SELECT id, name, phone, owner_id, created_at, updated_at FROM organizations WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Phone, &org.OwnerID, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, org)
	}
	return list, rows.Err()
}

// CountByOwner returns how many organizations the user owns.
func (r *Repository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM organizations WHERE owner_id = $1`, ownerID).Scan(&n)
	return n, err
}

// Update updates name and phone; nil fields are left unchanged.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, phone *string) (*models.Organization, error) {
	const q = `UPDATE organizations SET name = COALESCE($1, name), phone = COALESCE($2, phone), updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, phone, owner_id, created_at, updated_at`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, name, phone, id).Scan(&org.ID, &org.Name, &org.Phone, &org.OwnerID, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Delete removes an organization by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}
