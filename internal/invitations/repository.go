package invitations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eros-estates/backend/internal/models"
)

// Repository handles invitations persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invitations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateBatch inserts every invitation in one transaction.
func (r *Repository) CreateBatch(ctx context.Context, invitations []models.Invitation) error {
	const q = `INSERT INTO invitations (id, email, role_id, estate_id, created_by, code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, inv := range invitations {
			batch.Queue(q, inv.ID, inv.Email, inv.RoleID, inv.EstateID, inv.CreatedBy, inv.Code, inv.CreatedAt)
		}
		results := tx.SendBatch(ctx, batch)
		for range invitations {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("insert invitation: %w", err)
			}
		}
		return results.Close()
	})
}
