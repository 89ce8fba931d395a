package auth

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidSignUp      = errors.New("invalid sign up")
	ErrSessionNotFound    = errors.New("session not found")
)
