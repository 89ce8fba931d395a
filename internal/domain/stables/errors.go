package stables

import "errors"

var (
	ErrStableNotFound  = errors.New("stable not found")
	ErrAlreadyInStable = errors.New("already in stable")
	ErrInvalidStable   = errors.New("invalid stable")
	ErrNotMember       = errors.New("not a stable member")
	ErrNotAdmin        = errors.New("not stable admin")
)
