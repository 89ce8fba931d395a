package invitations

import (
	"context"
	"strings"

	"github.com/google/uuid"

	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
	"stable-app-go/internal/notify"
	"stable-app-go/pkg/logger"
)

type Service struct {
	repo     Repository
	stables  StableAccess
	users    Users
	notifier notify.Notifier
	appName  string
	log      logger.Logger
}

func NewService(repo Repository, stables StableAccess, users Users, notifier notify.Notifier, appName string, log logger.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		stables:  stables,
		users:    users,
		notifier: notifier,
		appName:  appName,
		log:      log,
	}
}

func (s *Service) Invite(ctx context.Context, actorID, email string) (*Invitation, error) {
	email = userdomain.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}

	stable, err := s.stables.RequireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	invitee, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if invitee.HasStable() {
		return nil, stablesdomain.ErrAlreadyInStable
	}

	invitation := Invitation{
		ID:            uuid.NewString(),
		InvitedUserID: invitee.ID,
		InvitedBy:     actorID,
		StableID:      stable.ID,
		StableName:    stable.Name,
		Status:        StatusPending,
	}
	if err := s.repo.CreateInvitation(ctx, &invitation); err != nil {
		return nil, err
	}

	s.notifyInvitee(ctx, actorID, invitee, &invitation)
	return &invitation, nil
}

// PendingFor returns the oldest pending invitation addressed to userID.
func (s *Service) PendingFor(ctx context.Context, userID string) (*Invitation, error) {
	return s.repo.FirstPendingFor(ctx, userID)
}

// Accept joins the invitee to the inviting stable and removes the invitation in one transaction.
// A second accept finds no invitation, and the member append is a no-op for existing members.
func (s *Service) Accept(ctx context.Context, userID, invitationID string) (*stablesdomain.Stable, error) {
	var stableID string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		invitation, err := tx.GetInvitationForUpdate(ctx, invitationID)
		if err != nil {
			return err
		}
		if invitation.InvitedUserID != userID {
			return ErrInvitationNotFound
		}

		assigned, err := tx.AssignUserStable(ctx, userID, invitation.StableID)
		if err != nil {
			return err
		}
		if !assigned {
			return stablesdomain.ErrAlreadyInStable
		}

		if err := tx.AddStableMember(ctx, invitation.StableID, userID); err != nil {
			return err
		}
		if err := tx.DeleteInvitation(ctx, invitation.ID); err != nil {
			return err
		}

		stableID = invitation.StableID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.stables.InvalidateUser(userID)
	stable, err := s.stables.GetStable(ctx, stableID)
	if err != nil {
		return nil, err
	}
	s.stables.InvalidateMembers(stable)
	return stable, nil
}

// Decline removes the invitation without touching the stable or the user.
func (s *Service) Decline(ctx context.Context, userID, invitationID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		invitation, err := tx.GetInvitationForUpdate(ctx, invitationID)
		if err != nil {
			return err
		}
		if invitation.InvitedUserID != userID {
			return ErrInvitationNotFound
		}
		return tx.DeleteInvitation(ctx, invitation.ID)
	})
}

func (s *Service) notifyInvitee(ctx context.Context, actorID string, invitee *userdomain.User, invitation *Invitation) {
	inviterName := invitation.StableName
	if inviter, err := s.users.GetProfile(ctx, actorID); err == nil && strings.TrimSpace(inviter.Name) != "" {
		inviterName = inviter.Name
	}

	to := notify.Recipient{
		UserID: invitee.ID,
		Name:   invitee.Name,
		Email:  invitee.Email,
	}
	if invitee.PushToken != nil {
		to.PushToken = *invitee.PushToken
	}

	msg := notify.InvitationMessage(s.appName, invitation.StableName, inviterName, invitee.Name, invitation.ID)
	if err := s.notifier.Notify(ctx, to, msg); err != nil {
		s.log.InternalError("invitations.invite: notify invitee failed", err, "invitation_id", invitation.ID, "user_id", invitee.ID)
	}
}
