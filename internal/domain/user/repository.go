package user

import "context"

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByIDs(ctx context.Context, userIDs []string) ([]User, error)
	UpdateProfile(ctx context.Context, userID, name, phone string) error
	UpdatePushToken(ctx context.Context, userID string, token *string) error
	EnsureProfile(ctx context.Context, user *User) error
}
