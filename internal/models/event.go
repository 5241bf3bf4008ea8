package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a check-in session owned by an organization. The ID is a short
// opaque hex token so it can be typed or embedded in a QR code.
// is_expired is monotonic: once true an event accepts no attendance and no
// further edits.
type Event struct {
	ID             string    `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Title          string    `json:"title"`
	ExpiresAt      time.Time `json:"expires_at"`
	IsExpired      bool      `json:"is_expired"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
