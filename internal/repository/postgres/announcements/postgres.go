package announcements

import (
	"context"
	"time"

	"gorm.io/gorm"

	announcementsdomain "stable-app-go/internal/domain/announcements"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateAnnouncement(ctx context.Context, announcement *announcementsdomain.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *PostgresRepository) ListByStable(ctx context.Context, stableID string) ([]announcementsdomain.Announcement, error) {
	var announcements []announcementsdomain.Announcement
	if err := r.db.WithContext(ctx).
		Where("stable_id = ?", stableID).
		Order("created_at desc").
		Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&announcementsdomain.Announcement{})
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) DeleteStableOlderThan(ctx context.Context, stableID string, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("stable_id = ? AND created_at < ?", stableID, cutoff).
		Delete(&announcementsdomain.Announcement{})
	return result.RowsAffected, result.Error
}
