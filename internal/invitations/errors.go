package invitations

import "errors"

var (
	ErrNotAMember              = errors.New("sender is not a member of the estate")
	ErrRoleNotFound            = errors.New("the role does not exist")
	ErrInsufficientPermissions = errors.New("sender does not have the required permissions to assign the role")
	ErrNoRecipients            = errors.New("at least one email is required")
	ErrInvalidEmail            = errors.New("invalid email address")
	ErrInvalidCode             = errors.New("invalid invitation code")
	ErrCodeExpired             = errors.New("invitation code expired")
)
