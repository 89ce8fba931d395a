package user

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, ErrUserNotFound
	}
	return s.repo.GetByID(ctx, userID)
}

// FindByEmail returns the single user registered with email. Emails are unique, so there is no
// "first of many" case.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}
	return s.repo.GetByEmail(ctx, email)
}

// ListProfiles returns profiles in the order of userIDs, skipping ids without a profile.
func (s *Service) ListProfiles(ctx context.Context, userIDs []string) ([]User, error) {
	if len(userIDs) == 0 {
		return []User{}, nil
	}

	users, err := s.repo.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	result := make([]User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := byID[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID, name, phone string) (*User, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	if err := s.repo.UpdateProfile(ctx, userID, name, phone); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// UpdatePushToken stores the device token used for push notifications. An empty token clears it.
func (s *Service) UpdatePushToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.repo.UpdatePushToken(ctx, userID, nil)
	}
	return s.repo.UpdatePushToken(ctx, userID, &token)
}

// EnsureProfile creates a profile for userID when none exists. Existing profiles are left untouched.
func (s *Service) EnsureProfile(ctx context.Context, userID, email, name string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidProfile)
	}
	email = NormalizeEmail(email)
	if email == "" {
		email = userID + "@localhost"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}

	return s.repo.EnsureProfile(ctx, &User{ID: userID, Email: email, Name: name})
}
