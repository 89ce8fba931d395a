package inmemory

import (
	"context"
	"slices"
	"time"

	invitationsdomain "stable-app-go/internal/domain/invitations"
	stablesdomain "stable-app-go/internal/domain/stables"
)

type InvitationRepository struct {
	store *Store
	inTx  bool
}

func (r *InvitationRepository) Transaction(ctx context.Context, fn func(invitationsdomain.Repository) error) error {
	return r.store.transaction(ctx, r.inTx, func() error {
		return fn(&InvitationRepository{store: r.store, inTx: true})
	})
}

func (r *InvitationRepository) CreateInvitation(ctx context.Context, invitation *invitationsdomain.Invitation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.data.invitations {
		if existing.InvitedUserID == invitation.InvitedUserID {
			return invitationsdomain.ErrAlreadyInvited
		}
	}
	if invitation.CreatedAt.IsZero() {
		invitation.CreatedAt = time.Now().UTC()
	}
	r.store.data.invitations[invitation.ID] = *invitation
	return nil
}

func (r *InvitationRepository) GetInvitationForUpdate(ctx context.Context, invitationID string) (*invitationsdomain.Invitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	invitation, ok := r.store.data.invitations[invitationID]
	if !ok {
		return nil, invitationsdomain.ErrInvitationNotFound
	}
	return &invitation, nil
}

func (r *InvitationRepository) FirstPendingFor(ctx context.Context, userID string) (*invitationsdomain.Invitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var first *invitationsdomain.Invitation
	for _, invitation := range r.store.data.invitations {
		if invitation.InvitedUserID != userID || invitation.Status != invitationsdomain.StatusPending {
			continue
		}
		if first == nil || invitation.CreatedAt.Before(first.CreatedAt) {
			found := invitation
			first = &found
		}
	}
	if first == nil {
		return nil, invitationsdomain.ErrInvitationNotFound
	}
	return first, nil
}

func (r *InvitationRepository) DeleteInvitation(ctx context.Context, invitationID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.data.invitations[invitationID]; !ok {
		return invitationsdomain.ErrInvitationNotFound
	}
	delete(r.store.data.invitations, invitationID)
	return nil
}

func (r *InvitationRepository) AssignUserStable(ctx context.Context, userID, stableID string) (bool, error) {
	return r.store.assignUserStable(userID, stableID)
}

func (r *InvitationRepository) AddStableMember(ctx context.Context, stableID, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stable, ok := r.store.data.stables[stableID]
	if !ok {
		return stablesdomain.ErrStableNotFound
	}
	if slices.Contains(stable.Members, userID) {
		return nil
	}
	stable.Members = append(slices.Clone(stable.Members), userID)
	stable.UpdatedAt = time.Now().UTC()
	r.store.data.stables[stableID] = stable
	return nil
}
