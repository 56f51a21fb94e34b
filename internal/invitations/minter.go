package invitations

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/eros-estates/backend/internal/models"
)

// Minter builds invitation records with their signed codes.
type Minter struct {
	codec    *Codec
	validate *validator.Validate
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewMinter returns a Minter that signs with codec.
func NewMinter(codec *Codec) *Minter {
	return &Minter{codec: codec, validate: validator.New(), now: time.Now, newID: uuid.New}
}

// Batch is the resolved context for one batch of invitations.
type Batch struct {
	EstateID uuid.UUID
	SenderID uuid.UUID
	RoleID   uuid.UUID
	Sender   *models.EstateUser
	Role     *models.Role
	Emails   []string
}

// Mint returns one invitation per address in input order, duplicates included.
// Any malformed address fails the whole batch.
func (m *Minter) Mint(b Batch) ([]models.Invitation, Payload, error) {
	if len(b.Emails) == 0 {
		return nil, Payload{}, ErrNoRecipients
	}
	emails := make([]string, len(b.Emails))
	for i, raw := range b.Emails {
		email := strings.TrimSpace(raw)
		if err := m.validate.Var(email, "required,email"); err != nil {
			return nil, Payload{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
		}
		emails[i] = email
	}

	createdAt := m.now().UTC()
	payload := Payload{
		EstateID:       b.EstateID,
		EstateName:     estateName(b.Sender),
		InviterName:    inviterName(b.Sender),
		RoleName:       b.Role.Name,
		ExpirationDate: createdAt.Add(ValidFor),
	}

	invitations := make([]models.Invitation, 0, len(emails))
	for _, email := range emails {
		inv := models.Invitation{
			ID:        m.newID(),
			Email:     email,
			RoleID:    b.RoleID,
			EstateID:  b.EstateID,
			CreatedBy: b.SenderID,
			CreatedAt: createdAt,
		}
		code, err := m.codec.Encode(inv.ID, email, payload)
		if err != nil {
			return nil, Payload{}, fmt.Errorf("encode invitation code: %w", err)
		}
		inv.Code = code
		invitations = append(invitations, inv)
	}
	return invitations, payload, nil
}

func estateName(m *models.EstateUser) string {
	if m == nil || m.Estate == nil {
		return ""
	}
	return m.Estate.Name
}

func inviterName(m *models.EstateUser) string {
	if m == nil || m.User == nil {
		return ""
	}
	return m.User.FirstName
}
