package stables

import (
	"context"

	userdomain "stable-app-go/internal/domain/user"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateStable(ctx context.Context, stable *Stable) error
	GetStable(ctx context.Context, stableID string) (*Stable, error)
	ListStables(ctx context.Context) ([]Stable, error)
	GetUserForUpdate(ctx context.Context, userID string) (*userdomain.User, error)
	// AssignUserStable sets the user's stable only when the user has none. It reports whether a row changed.
	AssignUserStable(ctx context.Context, userID, stableID string) (bool, error)
}

type Profiles interface {
	GetProfile(ctx context.Context, userID string) (*userdomain.User, error)
	ListProfiles(ctx context.Context, userIDs []string) ([]userdomain.User, error)
}
