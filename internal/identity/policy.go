package identity

import "github.com/google/uuid"

// Principal is the resolved identity of a caller for the lifetime of one request.
type Principal struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Resolve extracts both identity facts at once. Both claims must be present and well formed.
func Resolve(c Claims) (Principal, error) {
	id, err := CurrentUserID(c)
	if err != nil {
		return Principal{}, err
	}
	admin, err := IsAdmin(c)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: id, IsAdmin: admin}, nil
}

// Policy evaluates access predicates against a claim set. Every call
// re-reads the claims; nothing is cached between calls.
type Policy struct {
	claims Claims
}

// NewPolicy returns a Policy over the given claims.
func NewPolicy(c Claims) Policy {
	return Policy{claims: c}
}

// CurrentUserID returns the caller's user id.
func (p Policy) CurrentUserID() (uuid.UUID, error) {
	return CurrentUserID(p.claims)
}

// IsSelf reports whether target is the caller.
func (p Policy) IsSelf(target uuid.UUID) (bool, error) {
	id, err := CurrentUserID(p.claims)
	if err != nil {
		return false, err
	}
	return id == target, nil
}

// IsAdmin reports whether the caller is a platform admin.
func (p Policy) IsAdmin() (bool, error) {
	return IsAdmin(p.claims)
}

// IsAdminOrSelf is a short-circuit OR with the admin check first.
// An ErrUnauthorized from the admin check is returned as-is; it does not
// fall back to the self check.
func (p Policy) IsAdminOrSelf(target uuid.UUID) (bool, error) {
	admin, err := p.IsAdmin()
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	return p.IsSelf(target)
}
