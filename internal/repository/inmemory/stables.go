package inmemory

import (
	"cmp"
	"context"
	"slices"
	"time"

	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
)

type StableRepository struct {
	store *Store
	inTx  bool
}

func (r *StableRepository) Transaction(ctx context.Context, fn func(stablesdomain.Repository) error) error {
	return r.store.transaction(ctx, r.inTx, func() error {
		return fn(&StableRepository{store: r.store, inTx: true})
	})
}

func (r *StableRepository) CreateStable(ctx context.Context, stable *stablesdomain.Stable) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	stable.CreatedAt = now
	stable.UpdatedAt = now
	r.store.data.stables[stable.ID] = cloneStable(*stable)
	return nil
}

func (r *StableRepository) GetStable(ctx context.Context, stableID string) (*stablesdomain.Stable, error) {
	return r.store.getStable(stableID)
}

func (r *StableRepository) ListStables(ctx context.Context) ([]stablesdomain.Stable, error) {
	r.store.mu.RLock()
	result := make([]stablesdomain.Stable, 0, len(r.store.data.stables))
	for _, stable := range r.store.data.stables {
		result = append(result, cloneStable(stable))
	}
	r.store.mu.RUnlock()

	slices.SortFunc(result, func(a, b stablesdomain.Stable) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return result, nil
}

func (r *StableRepository) GetUserForUpdate(ctx context.Context, userID string) (*userdomain.User, error) {
	return r.store.getUser(userID)
}

func (r *StableRepository) AssignUserStable(ctx context.Context, userID, stableID string) (bool, error) {
	return r.store.assignUserStable(userID, stableID)
}

func (s *Store) getStable(stableID string) (*stablesdomain.Stable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stable, ok := s.data.stables[stableID]
	if !ok {
		return nil, stablesdomain.ErrStableNotFound
	}
	found := cloneStable(stable)
	return &found, nil
}
