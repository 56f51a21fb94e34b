package models

import "github.com/google/uuid"

// Permission is an atomic grantable capability. Reference data, never mutated.
type Permission struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// Role is a named bundle of permissions. EstateID is nil for global roles;
// otherwise the role is only assignable within that estate.
type Role struct {
	ID          uuid.UUID    `json:"id"`
	EstateID    *uuid.UUID   `json:"estate_id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

// PermissionIDs returns the role's permission ids with duplicates removed, in first-seen order.
func (r *Role) PermissionIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(r.Permissions))
	ids := make([]uuid.UUID, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}
	return ids
}

// AssignableIn reports whether the role may be granted within estateID.
func (r *Role) AssignableIn(estateID uuid.UUID) bool {
	return r.EstateID == nil || *r.EstateID == estateID
}
