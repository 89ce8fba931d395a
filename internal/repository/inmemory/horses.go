package inmemory

import (
	"cmp"
	"context"
	"slices"
	"time"

	horsesdomain "stable-app-go/internal/domain/horses"
)

type HorseRepository struct {
	store *Store
	inTx  bool
}

func (r *HorseRepository) Transaction(ctx context.Context, fn func(horsesdomain.Repository) error) error {
	return r.store.transaction(ctx, r.inTx, func() error {
		return fn(&HorseRepository{store: r.store, inTx: true})
	})
}

func (r *HorseRepository) CreateHorse(ctx context.Context, horse *horsesdomain.Horse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	horse.CreatedAt = now
	horse.UpdatedAt = now
	r.store.data.horses[horse.ID] = cloneHorse(*horse)
	return nil
}

func (r *HorseRepository) GetHorseForUpdate(ctx context.Context, horseID string) (*horsesdomain.Horse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	horse, ok := r.store.data.horses[horseID]
	if !ok {
		return nil, horsesdomain.ErrHorseNotFound
	}
	found := cloneHorse(horse)
	return &found, nil
}

func (r *HorseRepository) ReplaceHorse(ctx context.Context, horse *horsesdomain.Horse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.data.horses[horse.ID]
	if !ok {
		return horsesdomain.ErrHorseNotFound
	}
	horse.CreatedAt = existing.CreatedAt
	horse.UpdatedAt = time.Now().UTC()
	r.store.data.horses[horse.ID] = cloneHorse(*horse)
	return nil
}

func (r *HorseRepository) ListByOwner(ctx context.Context, ownerID string) ([]horsesdomain.Horse, error) {
	return r.ListByOwners(ctx, []string{ownerID})
}

func (r *HorseRepository) ListByOwners(ctx context.Context, ownerIDs []string) ([]horsesdomain.Horse, error) {
	r.store.mu.RLock()
	result := make([]horsesdomain.Horse, 0)
	for _, horse := range r.store.data.horses {
		if slices.Contains(ownerIDs, horse.OwnerID) {
			result = append(result, cloneHorse(horse))
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(result, func(a, b horsesdomain.Horse) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Name, b.Name))
	})
	return result, nil
}

func (r *HorseRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, horse := range r.store.data.horses {
		if horse.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}
