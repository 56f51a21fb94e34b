package invitations

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/eros-estates/backend/internal/estates"
	"github.com/eros-estates/backend/internal/models"
	"github.com/eros-estates/backend/internal/roles"
)

var errTransient = errors.New("connection reset")

type fakeMembers struct {
	mu        sync.Mutex
	members   map[[2]uuid.UUID]*models.EstateUser
	transient int
	calls     int
}

func (f *fakeMembers) GetByEstateAndUser(_ context.Context, estateID, userID uuid.UUID) (*models.EstateUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.transient > 0 {
		f.transient--
		return nil, errTransient
	}
	m, ok := f.members[[2]uuid.UUID{estateID, userID}]
	if !ok {
		return nil, estates.ErrNotFound
	}
	return m, nil
}

type fakeRoles struct {
	mu    sync.Mutex
	roles map[uuid.UUID]*models.Role
	calls int
}

func (f *fakeRoles) GetByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	r, ok := f.roles[id]
	if !ok {
		return nil, roles.ErrNotFound
	}
	return r, nil
}

func (f *fakeRoles) HasPermissions(_ context.Context, roleID uuid.UUID, ids []uuid.UUID) (bool, error) {
	var held []uuid.UUID
	if r, ok := f.roles[roleID]; ok {
		held = r.PermissionIDs()
	}
	return roles.HasDelegationRights(held, ids), nil
}

type fakeStore struct {
	batches [][]models.Invitation
	err     error
}

func (f *fakeStore) CreateBatch(_ context.Context, invs []models.Invitation) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, invs)
	return nil
}

// recordingSender succeeds for every address not in fail.
type recordingSender struct {
	mu   sync.Mutex
	fail map[string]bool
	sent []string
}

func (s *recordingSender) Send(_ context.Context, email string, _ Mail) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	if s.fail[email] {
		return StatusFailed, errors.New("smtp 550")
	}
	return StatusSent, nil
}

func perms(ids ...uuid.UUID) []models.Permission {
	out := make([]models.Permission, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Permission{ID: id})
	}
	return out
}
