package announcements

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
	"stable-app-go/internal/notify"
	"stable-app-go/pkg/logger"
)

type fakeAnnouncementRepo struct {
	items map[string]Announcement
}

func (r *fakeAnnouncementRepo) CreateAnnouncement(ctx context.Context, announcement *Announcement) error {
	r.items[announcement.ID] = *announcement
	return nil
}

func (r *fakeAnnouncementRepo) ListByStable(ctx context.Context, stableID string) ([]Announcement, error) {
	var result []Announcement
	for _, item := range r.items {
		if item.StableID == stableID {
			result = append(result, item)
		}
	}
	slices.SortFunc(result, func(a, b Announcement) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

func (r *fakeAnnouncementRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for id, item := range r.items {
		if item.CreatedAt.Before(cutoff) {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeAnnouncementRepo) DeleteStableOlderThan(ctx context.Context, stableID string, cutoff time.Time) (int64, error) {
	var removed int64
	for id, item := range r.items {
		if item.StableID == stableID && item.CreatedAt.Before(cutoff) {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

type fakeStables struct {
	stable *stablesdomain.Stable
}

func (f *fakeStables) RequireMember(ctx context.Context, userID string) (*stablesdomain.Stable, error) {
	if !f.stable.HasMember(userID) {
		return nil, stablesdomain.ErrStableNotFound
	}
	return f.stable, nil
}

func (f *fakeStables) RequireAdmin(ctx context.Context, userID string) (*stablesdomain.Stable, error) {
	stable, err := f.RequireMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stable.AdminID != userID {
		return nil, stablesdomain.ErrNotAdmin
	}
	return stable, nil
}

type fakeDirectory map[string]userdomain.User

func (d fakeDirectory) ListProfiles(ctx context.Context, userIDs []string) ([]userdomain.User, error) {
	var result []userdomain.User
	for _, id := range userIDs {
		if u, ok := d[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

type recordingNotifier struct {
	sent []notify.Recipient
	msgs []notify.Message
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, to notify.Recipient, msg notify.Message) error {
	n.sent = append(n.sent, to)
	n.msgs = append(n.msgs, msg)
	return n.err
}

var testNow = time.Date(2026, 5, 10, 12, 30, 0, 0, time.UTC)

func newTestService(notifier notify.Notifier) (*Service, *fakeAnnouncementRepo) {
	token := "device-bo"
	repo := &fakeAnnouncementRepo{items: make(map[string]Announcement)}
	stables := &fakeStables{stable: &stablesdomain.Stable{
		ID:      "stable-1",
		Name:    "Solbakken",
		AdminID: "admin",
		Members: []string{"admin", "anna", "bo"},
	}}
	directory := fakeDirectory{
		"admin": {ID: "admin", Name: "Admin"},
		"anna":  {ID: "anna", Name: "Anna"},
		"bo":    {ID: "bo", Name: "Bo", PushToken: &token},
	}
	service := NewService(repo, stables, directory, notifier, DefaultRetentionDays, logger.Nop())
	service.now = func() time.Time { return testNow }
	return service, repo
}

func TestPostRequiresAdmin(t *testing.T) {
	service, _ := newTestService(notify.Nop{})

	if _, err := service.Post(context.Background(), "anna", "Hay arrives Friday"); !errors.Is(err, stablesdomain.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestPostSanitizesAndStamps(t *testing.T) {
	service, _ := newTestService(notify.Nop{})

	announcement, err := service.Post(context.Background(), "admin", "  <b>Hay</b> &amp; straw <script>alert(1)</script>arrive ")
	if err != nil {
		t.Fatalf("expected post, got %v", err)
	}
	if announcement.Text != "Hay & straw arrive" {
		t.Fatalf("unexpected sanitized text %q", announcement.Text)
	}
	if announcement.DisplayDate != "10-05-2026 12:30" {
		t.Fatalf("unexpected display date %q", announcement.DisplayDate)
	}
	if !announcement.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected created at %v", announcement.CreatedAt)
	}
}

func TestPostValidatesText(t *testing.T) {
	service, _ := newTestService(notify.Nop{})
	ctx := context.Background()

	if _, err := service.Post(ctx, "admin", "   "); !errors.Is(err, ErrInvalidAnnouncement) {
		t.Fatalf("expected ErrInvalidAnnouncement for blank text, got %v", err)
	}
	if _, err := service.Post(ctx, "admin", "<p></p>"); !errors.Is(err, ErrInvalidAnnouncement) {
		t.Fatalf("expected ErrInvalidAnnouncement for markup only, got %v", err)
	}
	if _, err := service.Post(ctx, "admin", strings.Repeat("å", MaxTextLength+1)); !errors.Is(err, ErrInvalidAnnouncement) {
		t.Fatalf("expected ErrInvalidAnnouncement for long text, got %v", err)
	}
	if _, err := service.Post(ctx, "admin", strings.Repeat("å", MaxTextLength)); err != nil {
		t.Fatalf("expected max length text to pass, got %v", err)
	}
}

func TestPostNotifiesOtherMembers(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("push down")}
	service, _ := newTestService(notifier)

	if _, err := service.Post(context.Background(), "admin", "Gate code changed"); err != nil {
		t.Fatalf("expected notification failures to be ignored, got %v", err)
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(notifier.sent))
	}
	for _, to := range notifier.sent {
		if to.UserID == "admin" {
			t.Fatalf("expected author to be skipped")
		}
		if to.UserID == "bo" && to.PushToken != "device-bo" {
			t.Fatalf("expected bo's push token, got %q", to.PushToken)
		}
	}
	if notifier.msgs[0].Kind != notify.KindAnnouncement {
		t.Fatalf("unexpected message kind %q", notifier.msgs[0].Kind)
	}
}

func TestListForStableDropsExpired(t *testing.T) {
	service, repo := newTestService(notify.Nop{})
	repo.items["old"] = Announcement{ID: "old", StableID: "stable-1", CreatedAt: testNow.AddDate(0, 0, -8)}
	repo.items["recent"] = Announcement{ID: "recent", StableID: "stable-1", CreatedAt: testNow.AddDate(0, 0, -1)}
	repo.items["newest"] = Announcement{ID: "newest", StableID: "stable-1", CreatedAt: testNow.Add(-time.Hour)}
	repo.items["other"] = Announcement{ID: "other", StableID: "stable-2", CreatedAt: testNow.AddDate(0, 0, -30)}

	items, err := service.ListForStable(context.Background(), "anna")
	if err != nil {
		t.Fatalf("expected list, got %v", err)
	}
	if len(items) != 2 || items[0].ID != "newest" || items[1].ID != "recent" {
		t.Fatalf("unexpected announcements %+v", items)
	}
	if _, ok := repo.items["other"]; !ok {
		t.Fatalf("expected other stables to be left to the sweep")
	}

	removed, err := service.SweepExpired(context.Background())
	if err != nil || removed != 1 {
		t.Fatalf("expected sweep to remove 1, got %d, %v", removed, err)
	}
}

func TestListForStableRequiresMembership(t *testing.T) {
	service, _ := newTestService(notify.Nop{})
	if _, err := service.ListForStable(context.Background(), "stranger"); !errors.Is(err, stablesdomain.ErrStableNotFound) {
		t.Fatalf("expected ErrStableNotFound, got %v", err)
	}
}
