package horses

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	horsesdomain "stable-app-go/internal/domain/horses"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(horsesdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateHorse(ctx context.Context, horse *horsesdomain.Horse) error {
	return r.db.WithContext(ctx).Create(horse).Error
}

func (r *PostgresRepository) GetHorseForUpdate(ctx context.Context, horseID string) (*horsesdomain.Horse, error) {
	var horse horsesdomain.Horse
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", horseID).
		First(&horse).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, horsesdomain.ErrHorseNotFound
		}
		return nil, err
	}
	return &horse, nil
}

// ReplaceHorse overwrites every mutable column. Owner and creation time are kept.
func (r *PostgresRepository) ReplaceHorse(ctx context.Context, horse *horsesdomain.Horse) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&horsesdomain.Horse{}).
		Where("id = ?", horse.ID).
		Updates(map[string]interface{}{
			"name":       horse.Name,
			"breed":      horse.Breed,
			"age":        horse.Age,
			"color":      horse.Color,
			"feedings":   horse.Feedings,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return horsesdomain.ErrHorseNotFound
	}
	horse.UpdatedAt = now
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]horsesdomain.Horse, error) {
	var horses []horsesdomain.Horse
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc").
		Find(&horses).Error; err != nil {
		return nil, err
	}
	return horses, nil
}

func (r *PostgresRepository) ListByOwners(ctx context.Context, ownerIDs []string) ([]horsesdomain.Horse, error) {
	horses := make([]horsesdomain.Horse, 0)
	if len(ownerIDs) == 0 {
		return horses, nil
	}
	if err := r.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Order("created_at asc").
		Find(&horses).Error; err != nil {
		return nil, err
	}
	return horses, nil
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&horsesdomain.Horse{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
