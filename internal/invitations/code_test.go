package invitations

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	c := NewCodec("secret")
	id := uuid.New()
	p := Payload{
		EstateID:       uuid.New(),
		EstateName:     "Oak Park",
		InviterName:    "Ada",
		RoleName:       "Resident",
		ExpirationDate: time.Now().UTC().Add(ValidFor),
	}

	code, err := c.Encode(id, "a@x.com", p)
	require.NoError(t, err)

	got, err := c.Decode(code)
	require.NoError(t, err)
	assert.Equal(t, id, got.InvitationID)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, p.EstateID, got.EstateID)
	assert.Equal(t, p.EstateName, got.EstateName)
	assert.Equal(t, p.InviterName, got.InviterName)
	assert.Equal(t, p.RoleName, got.RoleName)
	assert.True(t, p.ExpirationDate.Equal(got.ExpirationDate), "want %v got %v", p.ExpirationDate, got.ExpirationDate)
}

func TestCodecRejectsTampering(t *testing.T) {
	code, err := NewCodec("one").Encode(uuid.New(), "a@x.com", Payload{ExpirationDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = NewCodec("two").Decode(code)
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = NewCodec("one").Decode(code + "x")
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = NewCodec("one").Decode("not-a-code")
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestCodecRejectsOtherSigningMethods(t *testing.T) {
	claims := codeClaims{
		Payload:          Payload{ExpirationDate: time.Now().Add(time.Hour)},
		RegisteredClaims: jwt.RegisteredClaims{Issuer: codeIssuer, ID: uuid.NewString(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	code, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewCodec("secret").Decode(code)
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestCodecExpiry(t *testing.T) {
	c := NewCodec("secret")
	issued := time.Now().UTC()
	code, err := c.Encode(uuid.New(), "a@x.com", Payload{ExpirationDate: issued.Add(ValidFor)})
	require.NoError(t, err)

	c.now = func() time.Time { return issued.Add(ValidFor - time.Minute) }
	_, err = c.Decode(code)
	require.NoError(t, err)

	c.now = func() time.Time { return issued.Add(ValidFor + time.Minute) }
	_, err = c.Decode(code)
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestCodecExpiryKeepsSubsecondPrecision(t *testing.T) {
	c := NewCodec("secret")
	exp := time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	code, err := c.Encode(uuid.New(), "a@x.com", Payload{ExpirationDate: exp})
	require.NoError(t, err)

	c.now = func() time.Time { return exp.Add(-100 * time.Millisecond) }
	got, err := c.Decode(code)
	require.NoError(t, err)
	assert.True(t, got.ExpirationDate.Equal(exp))

	c.now = func() time.Time { return exp.Add(100 * time.Millisecond) }
	_, err = c.Decode(code)
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestCeilSecond(t *testing.T) {
	whole := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, whole, ceilSecond(whole))
	assert.Equal(t, whole.Add(time.Second), ceilSecond(whole.Add(time.Nanosecond)))
}
