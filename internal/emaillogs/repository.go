package emaillogs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eros-estates/backend/internal/models"
)

// ErrNotFound is returned when an email log row does not exist.
var ErrNotFound = errors.New("email log not found")

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a log entry. A zero ID is filled in before insert.
func (r *Repository) Create(ctx context.Context, l *models.EmailLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	const q = `INSERT INTO email_logs (id, estate_id, invitation_id, email_type, recipient_email, subject, status, error_message)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''))
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, l.ID, l.EstateID, l.InvitationID, l.EmailType, l.RecipientEmail, l.Subject, l.Status, l.ErrorMessage).
		Scan(&l.CreatedAt)
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `UPDATE email_logs SET status = $2, sent_at = $3, error_message = NULL WHERE id = $1`
	return r.exec(ctx, q, id, models.EmailLogStatusSent, at)
}

// MarkFailed records a terminal delivery failure.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	const q = `UPDATE email_logs SET status = $2, error_message = $3 WHERE id = $1`
	return r.exec(ctx, q, id, models.EmailLogStatusFailed, reason)
}

func (r *Repository) exec(ctx context.Context, q string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByEstate returns email logs for an estate, newest first.
func (r *Repository) ListByEstate(ctx context.Context, estateID uuid.UUID) ([]*models.EmailLog, error) {
	const q = `SELECT id, estate_id, invitation_id, email_type, recipient_email, subject, status, sent_at, error_message, created_at
		FROM email_logs
		WHERE estate_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, estateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		var subject, errMsg *string
		if err := rows.Scan(&el.ID, &el.EstateID, &el.InvitationID, &el.EmailType, &el.RecipientEmail, &subject, &el.Status, &el.SentAt, &errMsg, &el.CreatedAt); err != nil {
			return nil, err
		}
		if subject != nil {
			el.Subject = *subject
		}
		if errMsg != nil {
			el.ErrorMessage = *errMsg
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
