package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType for outbound mail.
const (
	EmailTypeInvitation = "invitation"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusQueued = "queued"
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailLog records one delivery attempt outcome for a recipient.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	EstateID       *uuid.UUID `json:"estate_id,omitempty"`
	InvitationID   *uuid.UUID `json:"invitation_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
