package events

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	stablesdomain "stable-app-go/internal/domain/stables"
)

const (
	DefaultRecurringDays = 14
	MaxRecurringDays     = 366

	defaultInTime  = "08:00"
	defaultOutTime = "16:00"
)

type Service struct {
	repo    Repository
	stables StableAccess
	now     func() time.Time
}

func NewService(repo Repository, stables StableAccess) *Service {
	return &Service{
		repo:    repo,
		stables: stables,
		now:     time.Now,
	}
}

func (s *Service) CreateEvent(ctx context.Context, actorID string, input EventInput) (*Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidEvent)
	}

	stable, err := s.stables.RequireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	event := Event{
		ID:          uuid.NewString(),
		StableID:    stable.ID,
		Date:        dateOnly(input.Date),
		Time:        strings.TrimSpace(input.Time),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   actorID,
	}
	if err := s.repo.CreateEvent(ctx, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns the stable's events ordered by date, then by time of day.
func (s *Service) ListEvents(ctx context.Context, actorID string, filter ListFilter) ([]Event, error) {
	stable, err := s.stables.RequireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.ListEvents(ctx, stable.ID, filter)
	if err != nil {
		return nil, err
	}
	SortEvents(events)
	return events, nil
}

// SignUp claims the event for the actor. Claiming an event the actor already holds succeeds.
func (s *Service) SignUp(ctx context.Context, actorID, displayName, eventID string) (*Event, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrInvalidEvent)
	}

	if _, err := s.memberEvent(ctx, actorID, eventID); err != nil {
		return nil, err
	}

	claimed, err := s.repo.ClaimEvent(ctx, eventID, actorID, displayName)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if claimed || current.ClaimedBy(actorID) {
		return current, nil
	}
	return nil, ErrAlreadyTaken
}

// Resign clears the sign-up. Only the signed-up member or the stable admin may do so;
// resigning an unclaimed event changes nothing.
func (s *Service) Resign(ctx context.Context, actorID, eventID string) (*Event, error) {
	stable, role, err := s.stables.Membership(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !role.IsMember {
		return nil, stablesdomain.ErrNotMember
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.StableID != stable.ID {
		return nil, ErrEventNotFound
	}
	if !event.IsClaimed() {
		return event, nil
	}
	if !event.ClaimedBy(actorID) && !role.IsAdmin {
		return nil, ErrNotSignedUp
	}

	released, err := s.repo.ReleaseEvent(ctx, eventID, *event.UserID)
	if err != nil {
		return nil, err
	}
	if !released && !role.IsAdmin {
		return nil, ErrNotSignedUp
	}
	return s.repo.GetEvent(ctx, eventID)
}

// EditEvent applies the patch and keeps any existing sign-up.
func (s *Service) EditEvent(ctx context.Context, actorID, eventID string, patch EventPatch) (*Event, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidEvent)
		}
		patch.Title = &title
	}
	if patch.Time != nil {
		value := strings.TrimSpace(*patch.Time)
		patch.Time = &value
	}
	if patch.Description != nil {
		value := strings.TrimSpace(*patch.Description)
		patch.Description = &value
	}
	if patch.Date != nil {
		if patch.Date.IsZero() {
			return nil, fmt.Errorf("%w: date is required", ErrInvalidEvent)
		}
		date := dateOnly(*patch.Date)
		patch.Date = &date
	}

	if _, err := s.adminEvent(ctx, actorID, eventID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEvent(ctx, eventID, patch); err != nil {
		return nil, err
	}
	return s.repo.GetEvent(ctx, eventID)
}

func (s *Service) DeleteEvent(ctx context.Context, actorID, eventID string) error {
	if _, err := s.adminEvent(ctx, actorID, eventID); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, eventID)
}

// GenerateRecurringInOut creates one "Ind" and one "Ud" event per day, skipping slots that already
// exist. The existence check and the inserts run under a per-stable lock, so repeated calls never
// duplicate a slot.
func (s *Service) GenerateRecurringInOut(ctx context.Context, actorID string, input RecurringInput) ([]Event, error) {
	input, err := s.normalizeRecurring(input)
	if err != nil {
		return nil, err
	}

	stable, err := s.stables.RequireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Count:   input.Days,
		Dtstart: input.Start,
	})
	if err != nil {
		return nil, fmt.Errorf("recurrence rule: %w", err)
	}
	days := rule.All()
	if len(days) == 0 {
		return []Event{}, nil
	}

	slots := []struct {
		title string
		time  string
	}{
		{title: TitleIn, time: input.InTime},
		{title: TitleOut, time: input.OutTime},
	}

	created := make([]Event, 0, len(days)*len(slots))
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockStable(ctx, stable.ID); err != nil {
			return err
		}

		existing, err := tx.ExistingSlots(ctx, stable.ID, days[0], days[len(days)-1], []string{TitleIn, TitleOut})
		if err != nil {
			return err
		}
		taken := make(map[SlotKey]struct{}, len(existing))
		for _, key := range existing {
			taken[key] = struct{}{}
		}

		batch := make([]Event, 0, len(days)*len(slots))
		for _, day := range days {
			date := dateOnly(day)
			for _, slot := range slots {
				key := SlotKey{Date: date.Format(DateLayout), Title: slot.title}
				if _, ok := taken[key]; ok {
					continue
				}
				taken[key] = struct{}{}
				batch = append(batch, Event{
					ID:        uuid.NewString(),
					StableID:  stable.ID,
					Date:      date,
					Time:      slot.time,
					Title:     slot.title,
					CreatedBy: actorID,
				})
			}
		}
		if len(batch) == 0 {
			return nil
		}
		if err := tx.CreateEvents(ctx, batch); err != nil {
			return err
		}
		created = append(created, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) normalizeRecurring(input RecurringInput) (RecurringInput, error) {
	if input.Days == 0 {
		input.Days = DefaultRecurringDays
	}
	if input.Days < 0 || input.Days > MaxRecurringDays {
		return input, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidEvent, MaxRecurringDays)
	}

	if input.Start.IsZero() {
		input.Start = s.now()
	}
	input.Start = dateOnly(input.Start)

	input.InTime = strings.TrimSpace(input.InTime)
	if input.InTime == "" {
		input.InTime = defaultInTime
	}
	input.OutTime = strings.TrimSpace(input.OutTime)
	if input.OutTime == "" {
		input.OutTime = defaultOutTime
	}
	if _, err := time.Parse(TimeLayout, input.InTime); err != nil {
		return input, fmt.Errorf("%w: in time must be HH:MM", ErrInvalidEvent)
	}
	if _, err := time.Parse(TimeLayout, input.OutTime); err != nil {
		return input, fmt.Errorf("%w: out time must be HH:MM", ErrInvalidEvent)
	}

	return input, nil
}

func (s *Service) memberEvent(ctx context.Context, actorID, eventID string) (*Event, error) {
	stable, err := s.stables.RequireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.stableEvent(ctx, stable.ID, eventID)
}

func (s *Service) adminEvent(ctx context.Context, actorID, eventID string) (*Event, error) {
	stable, err := s.stables.RequireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.stableEvent(ctx, stable.ID, eventID)
}

// stableEvent hides events of other stables behind ErrEventNotFound.
func (s *Service) stableEvent(ctx context.Context, stableID, eventID string) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.StableID != stableID {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func SortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(minuteOfDay(a.Time), minuteOfDay(b.Time)); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
}

// minuteOfDay sorts unparseable times after every valid HH:MM.
func minuteOfDay(value string) int {
	parsed, err := time.Parse(TimeLayout, strings.TrimSpace(value))
	if err != nil {
		return 24 * 60
	}
	return parsed.Hour()*60 + parsed.Minute()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
