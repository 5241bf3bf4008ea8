package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxOrganizationsPerOwner caps how many organizations one user may own.
const MaxOrganizationsPerOwner = 5

// Organization is a tenant owning events and members.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	OwnerID   int64     `json:"owner_id,string"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
