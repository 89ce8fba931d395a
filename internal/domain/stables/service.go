package stables

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	userdomain "stable-app-go/internal/domain/user"
)

type Service struct {
	repo     Repository
	profiles Profiles
	cache    Cache
	cacheTTL time.Duration
}

func NewService(repo Repository, profiles Profiles, cache Cache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		repo:     repo,
		profiles: profiles,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) CreateStable(ctx context.Context, userID string, input CreateStableInput) (*Stable, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidStable)
	}

	var result Stable
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		creator, err := tx.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if creator.HasStable() {
			return ErrAlreadyInStable
		}

		stable := Stable{
			ID:      uuid.NewString(),
			Name:    name,
			Phone:   strings.TrimSpace(input.Phone),
			Email:   userdomain.NormalizeEmail(input.Email),
			AdminID: userID,
			Members: pq.StringArray{userID},
		}
		if err := tx.CreateStable(ctx, &stable); err != nil {
			return err
		}

		assigned, err := tx.AssignUserStable(ctx, userID, stable.ID)
		if err != nil {
			return err
		}
		if !assigned {
			return ErrAlreadyInStable
		}

		result = stable
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(userID)
	return &result, nil
}

// GetStableForUser resolves the user's stable through the profile pointer, not a membership scan.
func (s *Service) GetStableForUser(ctx context.Context, userID string) (*Stable, error) {
	if cached, ok := s.cache.GetByUserID(userID); ok {
		return cached, nil
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.HasStable() {
		return nil, ErrStableNotFound
	}

	stable, err := s.repo.GetStable(ctx, profile.StableRef())
	if err != nil {
		return nil, err
	}

	s.cache.SetByUserID(userID, stable, s.cacheTTL)
	return stable, nil
}

func (s *Service) GetStable(ctx context.Context, stableID string) (*Stable, error) {
	if stableID == "" {
		return nil, ErrStableNotFound
	}
	return s.repo.GetStable(ctx, stableID)
}

func (s *Service) ListStables(ctx context.Context) ([]Stable, error) {
	return s.repo.ListStables(ctx)
}

func (s *Service) Membership(ctx context.Context, userID string) (*Stable, Role, error) {
	stable, err := s.GetStableForUser(ctx, userID)
	if err != nil {
		return nil, Role{}, err
	}
	return stable, DeriveRole(stable, userID), nil
}

func (s *Service) RequireMember(ctx context.Context, userID string) (*Stable, error) {
	stable, role, err := s.Membership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !role.IsMember {
		return nil, ErrNotMember
	}
	return stable, nil
}

func (s *Service) RequireAdmin(ctx context.Context, userID string) (*Stable, error) {
	stable, role, err := s.Membership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !role.IsAdmin {
		return nil, ErrNotAdmin
	}
	return stable, nil
}

// ListMembers returns the member profiles of the user's stable in roster order.
func (s *Service) ListMembers(ctx context.Context, userID string) ([]userdomain.User, error) {
	stable, err := s.RequireMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.ListProfiles(ctx, stable.MemberIDs())
}

func (s *Service) InvalidateMembers(stable *Stable) {
	if stable == nil {
		return
	}
	for _, memberID := range stable.Members {
		s.cache.DeleteByUserID(memberID)
	}
}

func (s *Service) InvalidateUser(userID string) {
	s.cache.DeleteByUserID(userID)
}
