package inmemory

import (
	"context"
	"time"

	userdomain "stable-app-go/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *userdomain.User) error {
	return r.store.createUser(user)
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*userdomain.User, error) {
	return r.store.getUser(userID)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.data.users {
		if u.Email == email {
			found := cloneUser(u)
			return &found, nil
		}
	}
	return nil, userdomain.ErrUserNotFound
}

func (r *UserRepository) ListByIDs(ctx context.Context, userIDs []string) ([]userdomain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]userdomain.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.store.data.users[id]; ok {
			result = append(result, cloneUser(u))
		}
	}
	return result, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID, name, phone string) error {
	return r.store.updateUser(userID, func(u *userdomain.User) {
		u.Name = name
		u.Phone = phone
	})
}

func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, token *string) error {
	return r.store.updateUser(userID, func(u *userdomain.User) {
		u.PushToken = cloneString(token)
	})
}

func (r *UserRepository) EnsureProfile(ctx context.Context, user *userdomain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.data.users[user.ID]; ok {
		return nil
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.data.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *Store) createUser(user *userdomain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.users {
		if existing.Email == user.Email {
			return userdomain.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.data.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *Store) getUser(userID string) (*userdomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data.users[userID]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	found := cloneUser(u)
	return &found, nil
}

func (s *Store) updateUser(userID string, apply func(*userdomain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data.users[userID]
	if !ok {
		return userdomain.ErrUserNotFound
	}
	apply(&u)
	u.UpdatedAt = time.Now().UTC()
	s.data.users[userID] = u
	return nil
}

// assignUserStable sets the user's stable only when none is set.
func (s *Store) assignUserStable(userID, stableID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data.users[userID]
	if !ok {
		return false, userdomain.ErrUserNotFound
	}
	if u.HasStable() {
		return false, nil
	}
	u.StableID = &stableID
	u.UpdatedAt = time.Now().UTC()
	s.data.users[userID] = u
	return true, nil
}
