package invitations

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ValidFor is the fixed validity window of an invitation code.
const ValidFor = 7 * 24 * time.Hour

const codeIssuer = "eros-invitations"

// Payload is the context an invitation code carries to the acceptance flow.
type Payload struct {
	EstateID       uuid.UUID `json:"estate_id"`
	EstateName     string    `json:"estate_name"`
	InviterName    string    `json:"inviter_name"`
	RoleName       string    `json:"role_name"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// Code is a decoded, verified invitation code.
type Code struct {
	Payload
	InvitationID uuid.UUID
	Email        string
}

type codeClaims struct {
	Payload
	jwt.RegisteredClaims
}

// Codec encodes invitation payloads as HS256-signed JWTs: base64url JSON with a
// MAC, so acceptance can trust estate, role and expiry without re-querying.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Encode signs p for one invitation. The invitation id and recipient are
// bound as jti and sub so every code in a batch is distinct.
func (c *Codec) Encode(invitationID uuid.UUID, email string, p Payload) (string, error) {
	p.ExpirationDate = p.ExpirationDate.UTC()
	claims := codeClaims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    codeIssuer,
			Subject:   email,
			ID:        invitationID.String(),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(p.ExpirationDate)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies code and returns its contents. A code expires at its
// payload's ExpirationDate; expired codes return ErrCodeExpired; anything else unverifiable returns ErrInvalidCode.
func (c *Codec) Decode(code string) (*Code, error) {
	var claims codeClaims
	_, err := jwt.ParseWithClaims(code, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(codeIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrCodeExpired
	}
	if err != nil {
		return nil, ErrInvalidCode
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidCode
	}
	if !c.now().Before(claims.ExpirationDate) {
		return nil, ErrCodeExpired
	}
	return &Code{Payload: claims.Payload, InvitationID: id, Email: claims.Subject}, nil
}

// ceilSecond rounds t up to a whole second, since exp has second precision
// and truncating would expire a code early.
func ceilSecond(t time.Time) time.Time {
	s := t.Truncate(time.Second)
	if s.Before(t) {
		s = s.Add(time.Second)
	}
	return s
}
