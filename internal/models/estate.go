package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Estate is a tenant (organization or property) that owns roles and memberships.
type Estate struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	LatLng    *string    `json:"lat_lng,omitempty"`
	CreatedBy uuid.UUID  `json:"created_by"`
	Roles     []Role     `json:"roles,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"-"`
}

// Valid reports whether name and address are both non-blank.
func (e *Estate) Valid() bool {
	return strings.TrimSpace(e.Name) != "" && strings.TrimSpace(e.Address) != ""
}

// Deleted reports whether the estate has been soft-deleted.
func (e *Estate) Deleted() bool {
	return e.DeletedAt != nil
}
