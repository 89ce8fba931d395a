package stables

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(stablesdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateStable(ctx context.Context, stable *stablesdomain.Stable) error {
	return r.db.WithContext(ctx).Create(stable).Error
}

func (r *PostgresRepository) GetStable(ctx context.Context, stableID string) (*stablesdomain.Stable, error) {
	var stable stablesdomain.Stable
	if err := r.db.WithContext(ctx).Where("id = ?", stableID).First(&stable).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stablesdomain.ErrStableNotFound
		}
		return nil, err
	}
	return &stable, nil
}

func (r *PostgresRepository) ListStables(ctx context.Context) ([]stablesdomain.Stable, error) {
	var stables []stablesdomain.Stable
	if err := r.db.WithContext(ctx).Order("name asc, id asc").Find(&stables).Error; err != nil {
		return nil, err
	}
	return stables, nil
}

func (r *PostgresRepository) GetUserForUpdate(ctx context.Context, userID string) (*userdomain.User, error) {
	var user userdomain.User
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) AssignUserStable(ctx context.Context, userID, stableID string) (bool, error) {
	return AssignUserStable(ctx, r.db, userID, stableID)
}

// AssignUserStable points a stableless user at stableID. It is shared with the invitation repository.
func AssignUserStable(ctx context.Context, db *gorm.DB, userID, stableID string) (bool, error) {
	result := db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("id = ? AND stable_id IS NULL", userID).
		Updates(map[string]interface{}{
			"stable_id":  stableID,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
