package auth

import (
	"context"

	userdomain "stable-app-go/internal/domain/user"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// CreateCredential returns ErrEmailTaken when the email is already registered.
	CreateCredential(ctx context.Context, credential *Credential) error
	// GetCredentialByEmail returns ErrInvalidCredentials when nobody registered email.
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	CreateUser(ctx context.Context, user *userdomain.User) error
}

type SessionStore interface {
	SaveSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type Profiles interface {
	GetProfile(ctx context.Context, userID string) (*userdomain.User, error)
}
