// Package identity derives the caller's identity and admin status from the
// authenticated claim set of a request and evaluates self/admin access rules.
package identity

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Claim names carried by access tokens.
const (
	ClaimUserID  = "sub"
	ClaimEmail   = "email"
	ClaimIsAdmin = "is_admin"
)

// ErrUnauthorized is returned when an identity or admin claim is missing or malformed.
var ErrUnauthorized = errors.New("unauthorized")

// Claims is the authenticated security context of one request.
type Claims interface {
	Lookup(name string) (string, bool)
}

// MapClaims is a Claims backed by a plain string map.
type MapClaims map[string]string

// Lookup returns the raw value of the named claim.
func (m MapClaims) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// CurrentUserID parses the caller's user id from the unique-identifier claim.
// It never returns uuid.Nil without an error.
func CurrentUserID(c Claims) (uuid.UUID, error) {
	raw, ok := lookup(c, ClaimUserID)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

// IsAdmin parses the is-admin claim. Only "true" and "false", in any case, are
// accepted. A missing or other value is ErrUnauthorized, never a silent false.
func IsAdmin(c Claims) (bool, error) {
	raw, ok := lookup(c, ClaimIsAdmin)
	if !ok {
		return false, ErrUnauthorized
	}
	switch {
	case strings.EqualFold(raw, "true"):
		return true, nil
	case strings.EqualFold(raw, "false"):
		return false, nil
	}
	return false, ErrUnauthorized
}

// lookup returns the trimmed claim value; blank values count as absent.
func lookup(c Claims, name string) (string, bool) {
	if c == nil {
		return "", false
	}
	raw, ok := c.Lookup(name)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	return raw, true
}
