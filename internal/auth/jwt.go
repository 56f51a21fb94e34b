package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eros-estates/backend/internal/identity"
	"github.com/eros-estates/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// accessIssuer marks access tokens; tokens with any other issuer are rejected.
const accessIssuer = "eros-auth"

// JWTService handles token generation and validation.
type JWTService struct {
	secret      []byte
	expireHours int
}

// NewJWTService creates a JWT service.
func NewJWTService(secret string, expireHours int) *JWTService {
	return &JWTService{
		secret:      []byte(secret),
		expireHours: expireHours,
	}
}

// Generate creates a new JWT for the user. is_admin is carried as a string
// claim so it is parsed the same way as every other claim.
func (s *JWTService) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		identity.ClaimUserID:  user.ID.String(),
		identity.ClaimEmail:   user.Email,
		identity.ClaimIsAdmin: strconv.FormatBool(user.IsAdmin),
		"iss":                 accessIssuer,
		"exp":                 jwt.NewNumericDate(now.Add(time.Duration(s.expireHours) * time.Hour)),
		"iat":                 jwt.NewNumericDate(now),
		"jti":                 uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and validates a JWT and returns its claims as strings.
func (s *JWTService) Validate(tokenString string) (identity.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(accessIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	raw, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	claims := make(identity.MapClaims, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			claims[k] = val
		case bool:
			claims[k] = strconv.FormatBool(val)
		case float64:
			claims[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
		default:
			claims[k] = fmt.Sprint(val)
		}
	}
	return claims, nil
}
