package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation is a time-bounded offer for an email address to join an estate under a role.
// Code is self-contained; it carries everything needed to honor the invitation.
type Invitation struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	RoleID    uuid.UUID `json:"role_id"`
	EstateID  uuid.UUID `json:"estate_id"`
	CreatedBy uuid.UUID `json:"created_by"`
	Code      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
