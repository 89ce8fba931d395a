package inmemory

import (
	"context"
	"slices"
	"time"

	announcementsdomain "stable-app-go/internal/domain/announcements"
)

type AnnouncementRepository struct {
	store *Store
}

func (r *AnnouncementRepository) CreateAnnouncement(ctx context.Context, announcement *announcementsdomain.Announcement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = time.Now().UTC()
	}
	r.store.data.announcements[announcement.ID] = *announcement
	return nil
}

func (r *AnnouncementRepository) ListByStable(ctx context.Context, stableID string) ([]announcementsdomain.Announcement, error) {
	r.store.mu.RLock()
	result := make([]announcementsdomain.Announcement, 0)
	for _, announcement := range r.store.data.announcements {
		if announcement.StableID == stableID {
			result = append(result, announcement)
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(result, func(a, b announcementsdomain.Announcement) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

func (r *AnnouncementRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(func(a announcementsdomain.Announcement) bool {
		return a.CreatedAt.Before(cutoff)
	}), nil
}

func (r *AnnouncementRepository) DeleteStableOlderThan(ctx context.Context, stableID string, cutoff time.Time) (int64, error) {
	return r.deleteWhere(func(a announcementsdomain.Announcement) bool {
		return a.StableID == stableID && a.CreatedAt.Before(cutoff)
	}), nil
}

func (r *AnnouncementRepository) deleteWhere(match func(announcementsdomain.Announcement) bool) int64 {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for id, announcement := range r.store.data.announcements {
		if match(announcement) {
			delete(r.store.data.announcements, id)
			removed++
		}
	}
	return removed
}
