package models

import (
	"time"

	"github.com/google/uuid"
)

// EstateUser links a user to one role within one estate.
// Estate, User and Role are populated by readers that join them; they are read-only views.
type EstateUser struct {
	EstateID  uuid.UUID `json:"estate_id"`
	UserID    uuid.UUID `json:"user_id"`
	RoleID    uuid.UUID `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`

	Estate *Estate `json:"estate,omitempty"`
	User   *User   `json:"user,omitempty"`
	Role   *Role   `json:"role,omitempty"`
}
