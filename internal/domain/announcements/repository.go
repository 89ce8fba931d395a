package announcements

import (
	"context"
	"time"

	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
)

type Repository interface {
	CreateAnnouncement(ctx context.Context, announcement *Announcement) error
	ListByStable(ctx context.Context, stableID string) ([]Announcement, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteStableOlderThan(ctx context.Context, stableID string, cutoff time.Time) (int64, error)
}

type StableAccess interface {
	RequireMember(ctx context.Context, userID string) (*stablesdomain.Stable, error)
	RequireAdmin(ctx context.Context, userID string) (*stablesdomain.Stable, error)
}

type MemberDirectory interface {
	ListProfiles(ctx context.Context, userIDs []string) ([]userdomain.User, error)
}
