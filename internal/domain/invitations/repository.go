package invitations

import (
	"context"

	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// CreateInvitation returns ErrAlreadyInvited when the invitee already has a pending invitation.
	CreateInvitation(ctx context.Context, invitation *Invitation) error
	GetInvitationForUpdate(ctx context.Context, invitationID string) (*Invitation, error)
	FirstPendingFor(ctx context.Context, userID string) (*Invitation, error)
	DeleteInvitation(ctx context.Context, invitationID string) error
	AssignUserStable(ctx context.Context, userID, stableID string) (bool, error)
	// AddStableMember appends userID to the stable's members unless it is already there.
	AddStableMember(ctx context.Context, stableID, userID string) error
}

type StableAccess interface {
	RequireAdmin(ctx context.Context, userID string) (*stablesdomain.Stable, error)
	GetStable(ctx context.Context, stableID string) (*stablesdomain.Stable, error)
	InvalidateMembers(stable *stablesdomain.Stable)
	InvalidateUser(userID string)
}

type Users interface {
	GetProfile(ctx context.Context, userID string) (*userdomain.User, error)
	FindByEmail(ctx context.Context, email string) (*userdomain.User, error)
}
