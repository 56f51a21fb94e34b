package invitations

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eros-estates/backend/internal/models"
)

// Status is the delivery outcome for one recipient.
type Status string

const (
	StatusSent   Status = "sent"
	StatusQueued Status = "queued"
	StatusFailed Status = "failed"
)

// Mail is what a Sender needs to deliver one invitation.
type Mail struct {
	Invitation models.Invitation
	Payload    Payload
}

// Sender hands one invitation to the outside world.
type Sender interface {
	Send(ctx context.Context, email string, m Mail) (Status, error)
}

// Delivery is the per-recipient outcome of a dispatch.
type Delivery struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	Email        string    `json:"email"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
}

// Dispatcher fans invitations out to a Sender with bounded concurrency.
type Dispatcher struct {
	sender      Sender
	concurrency int
	logger      *zap.Logger
}

// NewDispatcher returns a Dispatcher. concurrency <= 0 means one send at a time.
func NewDispatcher(sender Sender, concurrency int, logger *zap.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, concurrency: concurrency, logger: logger}
}

// Dispatch attempts every invitation and returns outcomes in input order.
// A failed send never stops its siblings; only ctx cancellation skips pending sends.
func (d *Dispatcher) Dispatch(ctx context.Context, invitations []models.Invitation, p Payload) []Delivery {
	out := make([]Delivery, len(invitations))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i := range invitations {
		i, inv := i, invitations[i]
		out[i] = Delivery{InvitationID: inv.ID, Email: inv.Email}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Status, out[i].Error = StatusFailed, err.Error()
				return nil
			}
			status, err := d.sender.Send(ctx, inv.Email, Mail{Invitation: inv, Payload: p})
			if err != nil {
				d.logger.Warn("invitation dispatch failed",
					zap.String("invitation_id", inv.ID.String()),
					zap.String("email", inv.Email),
					zap.Error(err))
				out[i].Status, out[i].Error = StatusFailed, err.Error()
				return nil
			}
			out[i].Status = status
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Degraded reports whether any delivery failed.
func Degraded(deliveries []Delivery) bool {
	for _, d := range deliveries {
		if d.Status == StatusFailed {
			return true
		}
	}
	return false
}
