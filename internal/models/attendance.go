package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance is one immutable check-in row. member_id may be NULL until the
// detached member-link job completes for a brand-new contact.
// is_first_timer is decided at creation time and never revisited.
type Attendance struct {
	ID           uuid.UUID  `json:"id"`
	EventID      string     `json:"event_id"`
	MemberID     *uuid.UUID `json:"member_id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Gender       string     `json:"gender"`
	IsFirstTimer bool       `json:"is_first_timer"`
	CreatedAt    time.Time  `json:"created_at"`
}
