package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eros-estates/backend/internal/identity"
	"github.com/eros-estates/backend/internal/invitations"
	"github.com/eros-estates/backend/internal/models"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", 1)
	user := &models.User{ID: uuid.New(), Email: "a@x.com", IsAdmin: true}

	token, err := svc.Generate(user)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	id, err := identity.CurrentUserID(claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	admin, err := identity.IsAdmin(claims)
	require.NoError(t, err)
	assert.True(t, admin)
	assert.Equal(t, "a@x.com", claims[identity.ClaimEmail])
}

func TestJWTServiceRejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("one", 1).Generate(&models.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = NewJWTService("two", 1).Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTServiceRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", -1)
	token, err := svc.Generate(&models.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTServiceRejectsInvitationCode(t *testing.T) {
	code, err := invitations.NewCodec("secret").Encode(uuid.New(), "guest@x.com", invitations.Payload{
		EstateID:       uuid.New(),
		ExpirationDate: time.Now().Add(invitations.ValidFor),
	})
	require.NoError(t, err)

	_, err = NewJWTService("secret", 1).Validate(code)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTServiceRequiresIssuer(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		identity.ClaimUserID:  uuid.NewString(),
		identity.ClaimIsAdmin: "true",
		"exp":                 jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", 1).Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
