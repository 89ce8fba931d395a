package announcements

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"stable-app-go/internal/notify"
	"stable-app-go/pkg/logger"
)

type Service struct {
	repo      Repository
	stables   StableAccess
	members   MemberDirectory
	notifier  notify.Notifier
	retention time.Duration
	policy    *bluemonday.Policy
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, stables StableAccess, members MemberDirectory, notifier notify.Notifier, retentionDays int, log logger.Logger) *Service {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		stables:   stables,
		members:   members,
		notifier:  notifier,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		policy:    bluemonday.StrictPolicy(),
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Post(ctx context.Context, actorID, text string) (*Announcement, error) {
	text = s.sanitize(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidAnnouncement)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, fmt.Errorf("%w: text exceeds %d characters", ErrInvalidAnnouncement, MaxTextLength)
	}

	stable, err := s.stables.RequireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	announcement := Announcement{
		ID:          uuid.NewString(),
		StableID:    stable.ID,
		AuthorID:    actorID,
		Text:        text,
		DisplayDate: now.Format(DisplayDateLayout),
		CreatedAt:   now,
	}
	if err := s.repo.CreateAnnouncement(ctx, &announcement); err != nil {
		return nil, err
	}

	s.notifyMembers(ctx, actorID, stable.Name, stable.MemberIDs(), &announcement)
	return &announcement, nil
}

// ListForStable sweeps the viewer's stable before listing, newest first.
// Other stables are left to the background sweep.
func (s *Service) ListForStable(ctx context.Context, actorID string) ([]Announcement, error) {
	stable, err := s.stables.RequireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.DeleteStableOlderThan(ctx, stable.ID, s.cutoff())
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		s.log.Debug("announcements.list: expired removed", "stable_id", stable.ID, "count", removed)
	}

	return s.repo.ListByStable(ctx, stable.ID)
}

// SweepExpired deletes expired announcements of every stable.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, s.cutoff())
}

func (s *Service) Retention() time.Duration {
	return s.retention
}

func (s *Service) cutoff() time.Time {
	return s.now().UTC().Add(-s.retention)
}

// sanitize reduces text to plain text without markup.
func (s *Service) sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

func (s *Service) notifyMembers(ctx context.Context, authorID, stableName string, memberIDs []string, announcement *Announcement) {
	recipients := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != authorID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	profiles, err := s.members.ListProfiles(ctx, recipients)
	if err != nil {
		s.log.InternalError("announcements.post: list recipients failed", err, "announcement_id", announcement.ID)
		return
	}

	msg := notify.AnnouncementMessage(stableName, announcement.Text, announcement.ID)
	for _, profile := range profiles {
		to := notify.Recipient{UserID: profile.ID, Name: profile.Name}
		if profile.PushToken != nil {
			to.PushToken = *profile.PushToken
		}
		if err := s.notifier.Notify(ctx, to, msg); err != nil {
			s.log.InternalError("announcements.post: notify member failed", err, "announcement_id", announcement.ID, "user_id", profile.ID)
		}
	}
}
