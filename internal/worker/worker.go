// Package worker delivers queued invitation emails.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eros-estates/backend/pkg/mailer"
	"github.com/eros-estates/backend/pkg/queue"
)

// Mailer sends one message.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// StatusWriter records the outcome on the job's email log.
type StatusWriter interface {
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// JobQueue is the queue surface the worker consumes.
type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration, keys ...string) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// EmailProcessor processes invitation email jobs: send over SMTP, then update the email log.
type EmailProcessor struct {
	mailer  Mailer
	logs    StatusWriter
	queue   JobQueue
	logger  *zap.Logger
	backoff time.Duration
	poll    time.Duration
	now     func() time.Time
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(m Mailer, logs StatusWriter, q JobQueue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{
		mailer:  m,
		logs:    logs,
		queue:   q,
		logger:  logger,
		backoff: queue.RetryBackoff,
		poll:    5 * time.Second,
		now:     time.Now,
	}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeInvitationEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.InvitationEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	err := p.mailer.Send(ctx, mailer.Message{
		To:      payload.RecipientEmail,
		Subject: payload.Subject,
		HTML:    payload.BodyHTML,
	})
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	if err := p.logs.MarkSent(ctx, payload.EmailLogID, p.now().UTC()); err != nil {
		// the mail is out; a retry would send it twice
		p.logger.Error("mark email log sent failed", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
	}
	p.logger.Info("invitation email sent",
		zap.String("invitation_id", payload.InvitationID.String()),
		zap.String("email", payload.RecipientEmail))
	return nil
}

// handle processes job and schedules a retry on failure. It reports whether the job failed.
func (p *EmailProcessor) handle(ctx context.Context, job *queue.Job) bool {
	p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	err := p.Process(ctx, job)
	if err == nil {
		return false
	}
	p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))

	if job.Attempt+1 >= queue.MaxRetries {
		p.markFailed(ctx, job, err)
	}
	if reErr := p.queue.Retry(ctx, job); reErr != nil {
		p.logger.Error("retry enqueue failed", zap.Error(reErr))
	}
	return true
}

func (p *EmailProcessor) markFailed(ctx context.Context, job *queue.Job, cause error) {
	var payload queue.InvitationEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil || payload.EmailLogID == uuid.Nil {
		return
	}
	if err := p.logs.MarkFailed(ctx, payload.EmailLogID, cause.Error()); err != nil {
		p.logger.Error("mark email log failed", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, p.poll, queue.QueueEmails)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Warn("dequeue error", zap.Error(err))
			}
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}
		if p.handle(ctx, job) {
			p.sleep(ctx)
		}
	}
}

func (p *EmailProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
