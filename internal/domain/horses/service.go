package horses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	stablesdomain "stable-app-go/internal/domain/stables"
)

type Service struct {
	repo    Repository
	stables StableAccess
}

func NewService(repo Repository, stables StableAccess) *Service {
	return &Service{repo: repo, stables: stables}
}

func (s *Service) UpsertHorse(ctx context.Context, actorID string, input HorseInput) (*Horse, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	if input.ID == "" {
		horse := Horse{
			ID:       uuid.NewString(),
			OwnerID:  actorID,
			Name:     input.Name,
			Breed:    input.Breed,
			Age:      input.Age,
			Color:    input.Color,
			Feedings: datatypes.NewJSONSlice(input.Feedings),
		}
		if err := s.repo.CreateHorse(ctx, &horse); err != nil {
			return nil, err
		}
		return &horse, nil
	}

	var result Horse
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.GetHorseForUpdate(ctx, input.ID)
		if err != nil {
			return err
		}
		if err := s.ensureCanEdit(ctx, actorID, existing.OwnerID); err != nil {
			return err
		}

		replaced := Horse{
			ID:        existing.ID,
			OwnerID:   existing.OwnerID,
			Name:      input.Name,
			Breed:     input.Breed,
			Age:       input.Age,
			Color:     input.Color,
			Feedings:  datatypes.NewJSONSlice(input.Feedings),
			CreatedAt: existing.CreatedAt,
		}
		if err := tx.ReplaceHorse(ctx, &replaced); err != nil {
			return err
		}

		result = replaced
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Horse, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListForStable returns every horse owned by a member of the viewer's stable.
func (s *Service) ListForStable(ctx context.Context, userID string) ([]Horse, error) {
	stable, err := s.stables.RequireMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOwners(ctx, stable.MemberIDs())
}

func (s *Service) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return s.repo.CountByOwner(ctx, ownerID)
}

// ensureCanEdit allows the owner and the admin of the owner's stable.
func (s *Service) ensureCanEdit(ctx context.Context, actorID, ownerID string) error {
	if actorID == ownerID {
		return nil
	}

	stable, err := s.stables.GetStableForUser(ctx, ownerID)
	if err != nil {
		if errors.Is(err, stablesdomain.ErrStableNotFound) {
			return ErrNotOwner
		}
		return err
	}
	if stable.AdminID != actorID || !stable.HasMember(ownerID) {
		return ErrNotOwner
	}
	return nil
}

func normalizeInput(input HorseInput) (HorseInput, error) {
	input.ID = strings.TrimSpace(input.ID)
	input.Name = strings.TrimSpace(input.Name)
	input.Breed = strings.TrimSpace(input.Breed)
	input.Color = strings.TrimSpace(input.Color)

	switch {
	case input.Name == "":
		return input, fmt.Errorf("%w: name is required", ErrInvalidHorse)
	case input.Breed == "":
		return input, fmt.Errorf("%w: breed is required", ErrInvalidHorse)
	case input.Age <= 0:
		return input, fmt.Errorf("%w: age must be positive", ErrInvalidHorse)
	case input.Color == "":
		return input, fmt.Errorf("%w: color is required", ErrInvalidHorse)
	}

	feedings := make([]Feeding, 0, len(input.Feedings))
	for _, feeding := range input.Feedings {
		feeding.Food = strings.TrimSpace(feeding.Food)
		feeding.Quantity = strings.TrimSpace(feeding.Quantity)
		feeding.Measurement = strings.TrimSpace(feeding.Measurement)
		if feeding.Food == "" && feeding.Quantity == "" && feeding.Measurement == "" {
			continue
		}
		feedings = append(feedings, feeding)
	}
	input.Feedings = feedings

	return input, nil
}
