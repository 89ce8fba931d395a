package invitations

import "errors"

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrAlreadyInvited     = errors.New("user already has a pending invitation")
	ErrInvalidEmail       = errors.New("email is required")
)
