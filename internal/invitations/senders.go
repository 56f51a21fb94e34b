package invitations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eros-estates/backend/internal/models"
	"github.com/eros-estates/backend/pkg/queue"
)

// LogSender records invitations in the log instead of mailing them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender returns a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the recipient and code.
func (s *LogSender) Send(_ context.Context, email string, m Mail) (Status, error) {
	s.logger.Info("invitation",
		zap.String("invitation_id", m.Invitation.ID.String()),
		zap.String("email", email),
		zap.String("code", m.Invitation.Code))
	return StatusSent, nil
}

// Enqueuer accepts invitation email jobs.
type Enqueuer interface {
	EnqueueInvitationEmail(ctx context.Context, payload queue.InvitationEmailPayload) (string, error)
}

// EmailLogWriter records delivery state.
type EmailLogWriter interface {
	Create(ctx context.Context, log *models.EmailLog) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// QueueSender renders the email, records a queued email log, and enqueues a
// job for the worker to deliver.
type QueueSender struct {
	queue    Enqueuer
	logs     EmailLogWriter
	renderer *Renderer
	logger   *zap.Logger
}

// NewQueueSender returns a QueueSender.
func NewQueueSender(q Enqueuer, logs EmailLogWriter, renderer *Renderer, logger *zap.Logger) *QueueSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueSender{queue: q, logs: logs, renderer: renderer, logger: logger}
}

// Send enqueues one invitation email.
func (s *QueueSender) Send(ctx context.Context, email string, m Mail) (Status, error) {
	body, err := s.renderer.Render(m)
	if err != nil {
		return StatusFailed, err
	}
	subject := s.renderer.Subject(m.Payload)
	estateID, invitationID := m.Invitation.EstateID, m.Invitation.ID
	entry := &models.EmailLog{
		ID:             uuid.New(),
		EstateID:       &estateID,
		InvitationID:   &invitationID,
		EmailType:      models.EmailTypeInvitation,
		RecipientEmail: email,
		Subject:        subject,
		Status:         models.EmailLogStatusQueued,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return StatusFailed, fmt.Errorf("record email log: %w", err)
	}
	jobID, err := s.queue.EnqueueInvitationEmail(ctx, queue.InvitationEmailPayload{
		InvitationID:   invitationID,
		EstateID:       estateID,
		EmailLogID:     entry.ID,
		RecipientEmail: email,
		Subject:        subject,
		BodyHTML:       body,
	})
	if err != nil {
		if mErr := s.logs.MarkFailed(ctx, entry.ID, err.Error()); mErr != nil {
			s.logger.Error("mark email log failed", zap.Error(mErr), zap.String("email_log_id", entry.ID.String()))
		}
		return StatusFailed, fmt.Errorf("enqueue invitation email: %w", err)
	}
	s.logger.Debug("invitation email queued", zap.String("job_id", jobID), zap.String("email", email))
	return StatusQueued, nil
}
