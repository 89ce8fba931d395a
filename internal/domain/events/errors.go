package events

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
	ErrAlreadyTaken  = errors.New("event already taken")
	ErrNotSignedUp   = errors.New("not signed up for event")
)
