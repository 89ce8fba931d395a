package invitations

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	invitationsdomain "stable-app-go/internal/domain/invitations"
	stablesdomain "stable-app-go/internal/domain/stables"
	stablesrepo "stable-app-go/internal/repository/postgres/stables"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(invitationsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateInvitation(ctx context.Context, invitation *invitationsdomain.Invitation) error {
	err := r.db.WithContext(ctx).Create(invitation).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return invitationsdomain.ErrAlreadyInvited
	}
	return err
}

func (r *PostgresRepository) GetInvitationForUpdate(ctx context.Context, invitationID string) (*invitationsdomain.Invitation, error) {
	var invitation invitationsdomain.Invitation
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", invitationID).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invitationsdomain.ErrInvitationNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *PostgresRepository) FirstPendingFor(ctx context.Context, userID string) (*invitationsdomain.Invitation, error) {
	var invitation invitationsdomain.Invitation
	if err := r.db.WithContext(ctx).
		Where("invited_user_id = ? AND status = ?", userID, invitationsdomain.StatusPending).
		Order("created_at asc").
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invitationsdomain.ErrInvitationNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *PostgresRepository) DeleteInvitation(ctx context.Context, invitationID string) error {
	result := r.db.WithContext(ctx).Delete(&invitationsdomain.Invitation{}, "id = ?", invitationID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invitationsdomain.ErrInvitationNotFound
	}
	return nil
}

func (r *PostgresRepository) AssignUserStable(ctx context.Context, userID, stableID string) (bool, error) {
	return stablesrepo.AssignUserStable(ctx, r.db, userID, stableID)
}

func (r *PostgresRepository) AddStableMember(ctx context.Context, stableID, userID string) error {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE stables SET members = array_append(members, ?::text), updated_at = NOW() WHERE id = ? AND NOT (?::text = ANY(members))",
		userID, stableID, userID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&stablesdomain.Stable{}).Where("id = ?", stableID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return stablesdomain.ErrStableNotFound
	}
	return nil
}
