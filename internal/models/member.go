package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is the deduplicated identity of a person within an organization,
// keyed by (organization_id, email) or (organization_id, phone). Email and
// phone are nullable; a NULL never matches another NULL.
type Member struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Email          *string   `json:"email"`
	Phone          *string   `json:"phone"`
	Gender         *string   `json:"gender"`
	CreatedAt      time.Time `json:"created_at"`
}
