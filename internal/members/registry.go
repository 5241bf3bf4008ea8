// Package members maintains the deduplicated identity of a person within an
// organization, keyed by email or phone.
package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetvo/backend/internal/models"
)

// uniqueViolation is the PostgreSQL error code for duplicate unique keys.
const uniqueViolation = "23505"

// Contact holds the identity fields captured at check-in. Empty email or
// phone must be passed as nil so it is excluded from matching.
type Contact struct {
	Name   string
	Email  *string
	Phone  *string
	Gender *string
}

// NewContact builds a Contact, mapping empty strings to nil.
func NewContact(name, email, phone, gender string) Contact {
	return Contact{
		Name:   name,
		Email:  optional(email),
		Phone:  optional(phone),
		Gender: optional(gender),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Registry handles member persistence and deduplication.
type Registry struct {
	pool *pgxpool.Pool
}

// NewRegistry creates a member registry.
func NewRegistry(pool *pgxpool.Pool) *Registry {
	return &Registry{pool: pool}
}

const memberColumns = `id, organization_id, name, email, phone, gender, created_at`

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	err := row.Scan(&m.ID, &m.OrganizationID, &m.Name, &m.Email, &m.Phone, &m.Gender, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Find returns the member matching the contact's email or phone within the
// organization, or nil when no match exists. Absent fields are excluded from
// the match; they never act as wildcards or match a shared NULL.
func (r *Registry) Find(ctx context.Context, orgID uuid.UUID, contact Contact) (*models.Member, error) {
	var (
		cond string
		args = []interface{}{orgID}
	)
	switch {
	case contact.Email != nil && contact.Phone != nil:
		cond = "(email = $2 OR phone = $3)"
		args = append(args, *contact.Email, *contact.Phone)
	case contact.Email != nil:
		cond = "email = $2"
		args = append(args, *contact.Email)
	case contact.Phone != nil:
		cond = "phone = $2"
		args = append(args, *contact.Phone)
	default:
		return nil, nil
	}

	q := fmt.Sprintf(`SELECT %s FROM members WHERE organization_id = $1 AND %s ORDER BY created_at LIMIT 1`, memberColumns, cond)
	m, err := scanMember(r.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// FindOrCreate returns the member matching the contact, creating one when no
// match exists. Existing members are returned unchanged; name and gender are
// never overwritten on repeat visits. A concurrent identical submission that
// loses the insert race falls back to a re-lookup instead of erroring.
// created reports whether a new row was inserted.
func (r *Registry) FindOrCreate(ctx context.Context, orgID uuid.UUID, contact Contact) (m *models.Member, created bool, err error) {
	m, err = r.Find(ctx, orgID, contact)
	if err != nil {
		return nil, false, err
	}
	if m != nil {
		return m, false, nil
	}

	const ins = `INSERT INTO members (id, organization_id, name, email, phone, gender)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING ` + memberColumns
	m, err = scanMember(r.pool.QueryRow(ctx, ins, orgID, contact.Name, contact.Email, contact.Phone, contact.Gender))
	if err == nil {
		return m, true, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		existing, findErr := r.Find(ctx, orgID, contact)
		if findErr != nil {
			return nil, false, findErr
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	return nil, false, err
}

// GetByID returns a member by ID, or nil when absent.
func (r *Registry) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	m, err := scanMember(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByOrganization returns all members of an organization, newest first.
func (r *Registry) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Member, error) {
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
