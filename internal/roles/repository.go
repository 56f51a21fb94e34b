package roles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eros-estates/backend/internal/models"
)

// ErrNotFound is returned when no role has the requested id.
var ErrNotFound = errors.New("role not found")

// Repository reads roles and role_permissions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a roles repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a role with its permissions.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := r.pool.QueryRow(ctx, `SELECT id, estate_id, name, description FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.EstateID, &role.Name, &role.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	perms, err := r.permissions(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return &role, nil
}

// GetAll returns every role with its permissions, ordered by name.
func (r *Repository) GetAll(ctx context.Context) ([]models.Role, error) {
	return r.list(ctx, ``)
}

// ListForUser returns the global roles plus the roles of estates userID belongs to.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	return r.list(ctx, `WHERE r.estate_id IS NULL
		OR r.estate_id IN (SELECT estate_id FROM estate_users WHERE user_id = $1)`, userID)
}

// IsMember reports whether userID belongs to estateID.
func (r *Repository) IsMember(ctx context.Context, estateID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM estate_users WHERE estate_id = $1 AND user_id = $2)`,
		estateID, userID).Scan(&ok)
	return ok, err
}

func (r *Repository) list(ctx context.Context, where string, args ...interface{}) ([]models.Role, error) {
	q := `SELECT r.id, r.estate_id, r.name, r.description, p.id, p.name, p.description
		FROM roles r
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
		LEFT JOIN permissions p ON p.id = rp.permission_id
		` + where + `
		ORDER BY r.name, r.id, p.name`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Role
	for rows.Next() {
		var role models.Role
		var pid *uuid.UUID
		var pname, pdesc *string
		if err := rows.Scan(&role.ID, &role.EstateID, &role.Name, &role.Description, &pid, &pname, &pdesc); err != nil {
			return nil, err
		}
		if n := len(list); n == 0 || list[n-1].ID != role.ID {
			role.Permissions = []models.Permission{}
			list = append(list, role)
		}
		if pid != nil {
			last := &list[len(list)-1]
			last.Permissions = append(last.Permissions, models.Permission{ID: *pid, Name: deref(pname), Description: deref(pdesc)})
		}
	}
	return list, rows.Err()
}

// PermissionIDs returns the permission ids held by a role. A role that does
// not exist holds nothing.
func (r *Repository) PermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT permission_id FROM role_permissions WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// HasPermissions reports whether roleID holds every permission in ids.
func (r *Repository) HasPermissions(ctx context.Context, roleID uuid.UUID, ids []uuid.UUID) (bool, error) {
	held, err := r.PermissionIDs(ctx, roleID)
	if err != nil {
		return false, err
	}
	return HasDelegationRights(held, ids), nil
}

func (r *Repository) permissions(ctx context.Context, roleID uuid.UUID) ([]models.Permission, error) {
	const q = `SELECT p.id, p.name, p.description
		FROM role_permissions rp
		INNER JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.name`
	rows, err := r.pool.Query(ctx, q, roleID)
	if err != nil {
		return nil, err
	}
	perms, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Permission])
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []models.Permission{}
	}
	return perms, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
