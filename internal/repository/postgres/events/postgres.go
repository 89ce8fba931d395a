package events

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	eventsdomain "stable-app-go/internal/domain/events"
)

const createBatchSize = 100

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(eventsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) LockStable(ctx context.Context, stableID string) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "events:"+stableID).
		Error
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, event *eventsdomain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *PostgresRepository) CreateEvents(ctx context.Context, events []eventsdomain.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(events, createBatchSize).Error
}

func (r *PostgresRepository) GetEvent(ctx context.Context, eventID string) (*eventsdomain.Event, error) {
	var event eventsdomain.Event
	if err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eventsdomain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context, stableID string, filter eventsdomain.ListFilter) ([]eventsdomain.Event, error) {
	query := r.db.WithContext(ctx).Where("stable_id = ?", stableID)
	if filter.From != nil {
		query = query.Where("date >= ?", filter.From.Format(eventsdomain.DateLayout))
	}
	if filter.To != nil {
		query = query.Where("date <= ?", filter.To.Format(eventsdomain.DateLayout))
	}

	var events []eventsdomain.Event
	if err := query.Order("date asc, time asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresRepository) ExistingSlots(ctx context.Context, stableID string, from, to time.Time, titles []string) ([]eventsdomain.SlotKey, error) {
	type slotRow struct {
		Date  time.Time `gorm:"column:date"`
		Title string    `gorm:"column:title"`
	}

	var rows []slotRow
	if err := r.db.WithContext(ctx).
		Model(&eventsdomain.Event{}).
		Select("date, title").
		Where("stable_id = ? AND date BETWEEN ? AND ? AND title IN ?",
			stableID, from.Format(eventsdomain.DateLayout), to.Format(eventsdomain.DateLayout), titles).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	keys := make([]eventsdomain.SlotKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, eventsdomain.SlotKey{
			Date:  row.Date.Format(eventsdomain.DateLayout),
			Title: row.Title,
		})
	}
	return keys, nil
}

func (r *PostgresRepository) ClaimEvent(ctx context.Context, eventID, userID, userName string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&eventsdomain.Event{}).
		Where("id = ? AND user_id IS NULL", eventID).
		Updates(map[string]interface{}{
			"user_id":    userID,
			"user_name":  userName,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	return false, r.ensureExists(ctx, eventID)
}

func (r *PostgresRepository) ReleaseEvent(ctx context.Context, eventID, expectedUserID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&eventsdomain.Event{}).
		Where("id = ? AND user_id = ?", eventID, expectedUserID).
		Updates(map[string]interface{}{
			"user_id":    nil,
			"user_name":  nil,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	return false, r.ensureExists(ctx, eventID)
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, eventID string, patch eventsdomain.EventPatch) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if patch.Date != nil {
		updates["date"] = patch.Date.Format(eventsdomain.DateLayout)
	}
	if patch.Time != nil {
		updates["time"] = *patch.Time
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}

	result := r.db.WithContext(ctx).Model(&eventsdomain.Event{}).Where("id = ?", eventID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return eventsdomain.ErrEventNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, eventID string) error {
	result := r.db.WithContext(ctx).Delete(&eventsdomain.Event{}, "id = ?", eventID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return eventsdomain.ErrEventNotFound
	}
	return nil
}

func (r *PostgresRepository) ensureExists(ctx context.Context, eventID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&eventsdomain.Event{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return eventsdomain.ErrEventNotFound
	}
	return nil
}
