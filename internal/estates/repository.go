package estates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eros-estates/backend/internal/models"
)

// OwnerRoleName is the role created for the creator of every new estate.
const OwnerRoleName = "Owner"

// ErrNotFound is returned when an estate or membership does not exist or the estate is soft-deleted.
var ErrNotFound = errors.New("not found")

// Repository handles estates and estate_users persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an estates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEstateAndUser returns the membership for (estateID, userID) joined with
// its estate, user and role. Soft-deleted estates have no memberships.
func (r *Repository) GetByEstateAndUser(ctx context.Context, estateID, userID uuid.UUID) (*models.EstateUser, error) {
	const q = `SELECT eu.estate_id, eu.user_id, eu.role_id, eu.created_at,
		e.name, e.address, e.lat_lng, e.created_by, e.created_at, e.updated_at,
		u.email, u.first_name, COALESCE(u.last_name,''), u.is_admin,
		ro.name, ro.description
		FROM estate_users eu
		INNER JOIN estates e ON e.id = eu.estate_id AND e.deleted_at IS NULL
		INNER JOIN users u ON u.id = eu.user_id
		INNER JOIN roles ro ON ro.id = eu.role_id
		WHERE eu.estate_id = $1 AND eu.user_id = $2`
	var (
		m models.EstateUser
		e models.Estate
		u models.User
		g models.Role
	)
	err := r.pool.QueryRow(ctx, q, estateID, userID).Scan(
		&m.EstateID, &m.UserID, &m.RoleID, &m.CreatedAt,
		&e.Name, &e.Address, &e.LatLng, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
		&u.Email, &u.FirstName, &u.LastName, &u.IsAdmin,
		&g.Name, &g.Description,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.ID, u.ID, g.ID = m.EstateID, m.UserID, m.RoleID
	m.Estate, m.User, m.Role = &e, &u, &g
	return &m, nil
}

// Create inserts the estate, an Owner role holding every permission, and the
// creator's membership in that role, in one transaction.
func (r *Repository) Create(ctx context.Context, e *models.Estate) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO estates (name, address, lat_lng, created_by)
			VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			e.Name, e.Address, e.LatLng, e.CreatedBy).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert estate: %w", err)
		}
		var roleID uuid.UUID
		err = tx.QueryRow(ctx, `INSERT INTO roles (estate_id, name, description)
			VALUES ($1, $2, 'Estate creator') RETURNING id`, e.ID, OwnerRoleName).Scan(&roleID)
		if err != nil {
			return fmt.Errorf("insert owner role: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO role_permissions (role_id, permission_id)
			SELECT $1, id FROM permissions`, roleID); err != nil {
			return fmt.Errorf("grant owner permissions: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO estate_users (estate_id, user_id, role_id)
			VALUES ($1, $2, $3)`, e.ID, e.CreatedBy, roleID); err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		e.Roles = []models.Role{{ID: roleID, EstateID: &e.ID, Name: OwnerRoleName, Description: "Estate creator"}}
		return nil
	})
}

// GetByID returns a live estate with its roles.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Estate, error) {
	var e models.Estate
	err := r.pool.QueryRow(ctx, `SELECT id, name, address, lat_lng, created_by, created_at, updated_at
		FROM estates WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&e.ID, &e.Name, &e.Address, &e.LatLng, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, estate_id, name, description FROM roles WHERE estate_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.EstateID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		e.Roles = append(e.Roles, role)
	}
	return &e, rows.Err()
}

// UpdateParams holds the mutable estate fields. Nil fields are left as is.
type UpdateParams struct {
	Name    *string
	Address *string
	LatLng  *string
}

// Update applies p to a live estate and returns the result.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Estate, error) {
	const q = `UPDATE estates SET
		name = COALESCE($2, name),
		address = COALESCE($3, address),
		lat_lng = COALESCE($4, lat_lng),
		updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, name, address, lat_lng, created_by, created_at, updated_at`
	var e models.Estate
	err := r.pool.QueryRow(ctx, q, id, p.Name, p.Address, p.LatLng).
		Scan(&e.ID, &e.Name, &e.Address, &e.LatLng, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SoftDelete marks a live estate deleted.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE estates SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the live estates userID is a member of.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Estate, error) {
	const q = `SELECT e.id, e.name, e.address, e.lat_lng, e.created_by, e.created_at, e.updated_at
		FROM estates e
		INNER JOIN estate_users eu ON eu.estate_id = e.id
		WHERE eu.user_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Estate
	for rows.Next() {
		var e models.Estate
		if err := rows.Scan(&e.ID, &e.Name, &e.Address, &e.LatLng, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Member is an estate member with user and role details.
type Member struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	RoleID    uuid.UUID `json:"role_id"`
	RoleName  string    `json:"role_name"`
	AddedAt   time.Time `json:"added_at"`
}

// ListMembers returns the members of an estate, oldest first.
func (r *Repository) ListMembers(ctx context.Context, estateID uuid.UUID) ([]Member, error) {
	const q = `SELECT eu.user_id, u.email, u.first_name, COALESCE(u.last_name,''), eu.role_id, ro.name, eu.created_at
		FROM estate_users eu
		INNER JOIN users u ON u.id = eu.user_id
		INNER JOIN roles ro ON ro.id = eu.role_id
		WHERE eu.estate_id = $1
		ORDER BY eu.created_at ASC`
	rows, err := r.pool.Query(ctx, q, estateID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Member])
}
