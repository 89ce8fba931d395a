package inmemory

import (
	"context"
	"slices"
	"time"

	eventsdomain "stable-app-go/internal/domain/events"
)

type EventRepository struct {
	store *Store
	inTx  bool
}

func (r *EventRepository) Transaction(ctx context.Context, fn func(eventsdomain.Repository) error) error {
	return r.store.transaction(ctx, r.inTx, func() error {
		return fn(&EventRepository{store: r.store, inTx: true})
	})
}

// LockStable is covered by the store-wide transaction lock.
func (r *EventRepository) LockStable(ctx context.Context, stableID string) error {
	return nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, event *eventsdomain.Event) error {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	r.store.mu.Lock()
	r.store.data.events[event.ID] = cloneEvent(*event)
	r.store.mu.Unlock()
	return nil
}

func (r *EventRepository) CreateEvents(ctx context.Context, events []eventsdomain.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	for _, event := range events {
		event.CreatedAt = now
		event.UpdatedAt = now
		r.store.data.events[event.ID] = cloneEvent(event)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (*eventsdomain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	event, ok := r.store.data.events[eventID]
	if !ok {
		return nil, eventsdomain.ErrEventNotFound
	}
	found := cloneEvent(event)
	return &found, nil
}

func (r *EventRepository) ListEvents(ctx context.Context, stableID string, filter eventsdomain.ListFilter) ([]eventsdomain.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]eventsdomain.Event, 0)
	for _, event := range r.store.data.events {
		if event.StableID != stableID {
			continue
		}
		if filter.From != nil && event.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && event.Date.After(*filter.To) {
			continue
		}
		result = append(result, cloneEvent(event))
	}
	eventsdomain.SortEvents(result)
	return result, nil
}

func (r *EventRepository) ExistingSlots(ctx context.Context, stableID string, from, to time.Time, titles []string) ([]eventsdomain.SlotKey, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]eventsdomain.SlotKey, 0)
	for _, event := range r.store.data.events {
		if event.StableID != stableID || event.Date.Before(from) || event.Date.After(to) {
			continue
		}
		if !slices.Contains(titles, event.Title) {
			continue
		}
		result = append(result, eventsdomain.SlotKey{
			Date:  event.Date.Format(eventsdomain.DateLayout),
			Title: event.Title,
		})
	}
	return result, nil
}

func (r *EventRepository) ClaimEvent(ctx context.Context, eventID, userID, userName string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.data.events[eventID]
	if !ok {
		return false, eventsdomain.ErrEventNotFound
	}
	if event.IsClaimed() {
		return false, nil
	}
	event.UserID = &userID
	event.UserName = &userName
	event.UpdatedAt = time.Now().UTC()
	r.store.data.events[eventID] = event
	return true, nil
}

func (r *EventRepository) ReleaseEvent(ctx context.Context, eventID, expectedUserID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.data.events[eventID]
	if !ok {
		return false, eventsdomain.ErrEventNotFound
	}
	if !event.ClaimedBy(expectedUserID) {
		return false, nil
	}
	event.UserID = nil
	event.UserName = nil
	event.UpdatedAt = time.Now().UTC()
	r.store.data.events[eventID] = event
	return true, nil
}

func (r *EventRepository) UpdateEvent(ctx context.Context, eventID string, patch eventsdomain.EventPatch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.data.events[eventID]
	if !ok {
		return eventsdomain.ErrEventNotFound
	}
	if patch.Date != nil {
		event.Date = *patch.Date
	}
	if patch.Time != nil {
		event.Time = *patch.Time
	}
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	event.UpdatedAt = time.Now().UTC()
	r.store.data.events[eventID] = event
	return nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, eventID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.data.events[eventID]; !ok {
		return eventsdomain.ErrEventNotFound
	}
	delete(r.store.data.events, eventID)
	return nil
}
