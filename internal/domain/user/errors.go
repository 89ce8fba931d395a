package user

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrEmailTaken     = errors.New("email already registered")
)
