package events

import (
	"context"
	"time"

	stablesdomain "stable-app-go/internal/domain/stables"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockStable serializes writers on one stable's calendar until the transaction ends.
	LockStable(ctx context.Context, stableID string) error
	CreateEvent(ctx context.Context, event *Event) error
	CreateEvents(ctx context.Context, events []Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, stableID string, filter ListFilter) ([]Event, error)
	ExistingSlots(ctx context.Context, stableID string, from, to time.Time, titles []string) ([]SlotKey, error)
	// ClaimEvent sets the sign-up only when nobody holds it. It reports whether a row changed.
	ClaimEvent(ctx context.Context, eventID, userID, userName string) (bool, error)
	// ReleaseEvent clears the sign-up only when it is still held by expectedUserID.
	ReleaseEvent(ctx context.Context, eventID, expectedUserID string) (bool, error)
	UpdateEvent(ctx context.Context, eventID string, patch EventPatch) error
	DeleteEvent(ctx context.Context, eventID string) error
}

type StableAccess interface {
	Membership(ctx context.Context, userID string) (*stablesdomain.Stable, stablesdomain.Role, error)
	RequireMember(ctx context.Context, userID string) (*stablesdomain.Stable, error)
	RequireAdmin(ctx context.Context, userID string) (*stablesdomain.Stable, error)
}
