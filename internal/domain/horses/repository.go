package horses

import (
	"context"

	stablesdomain "stable-app-go/internal/domain/stables"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateHorse(ctx context.Context, horse *Horse) error
	GetHorseForUpdate(ctx context.Context, horseID string) (*Horse, error)
	ReplaceHorse(ctx context.Context, horse *Horse) error
	ListByOwner(ctx context.Context, ownerID string) ([]Horse, error)
	ListByOwners(ctx context.Context, ownerIDs []string) ([]Horse, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

type StableAccess interface {
	RequireMember(ctx context.Context, userID string) (*stablesdomain.Stable, error)
	GetStableForUser(ctx context.Context, userID string) (*stablesdomain.Stable, error)
}
