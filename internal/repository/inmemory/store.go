package inmemory

import (
	"context"
	"maps"
	"slices"
	"sync"

	announcementsdomain "stable-app-go/internal/domain/announcements"
	authdomain "stable-app-go/internal/domain/auth"
	eventsdomain "stable-app-go/internal/domain/events"
	horsesdomain "stable-app-go/internal/domain/horses"
	invitationsdomain "stable-app-go/internal/domain/invitations"
	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
)

// Store keeps every collection in process memory. Transactions are serialized and roll back
// by restoring a snapshot taken when they start.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data data
}

type data struct {
	users         map[string]userdomain.User
	credentials   map[string]authdomain.Credential
	sessions      map[string]authdomain.Session
	stables       map[string]stablesdomain.Stable
	invitations   map[string]invitationsdomain.Invitation
	horses        map[string]horsesdomain.Horse
	events        map[string]eventsdomain.Event
	announcements map[string]announcementsdomain.Announcement
}

func NewStore() *Store {
	return &Store{
		data: data{
			users:         make(map[string]userdomain.User),
			credentials:   make(map[string]authdomain.Credential),
			sessions:      make(map[string]authdomain.Session),
			stables:       make(map[string]stablesdomain.Stable),
			invitations:   make(map[string]invitationsdomain.Invitation),
			horses:        make(map[string]horsesdomain.Horse),
			events:        make(map[string]eventsdomain.Event),
			announcements: make(map[string]announcementsdomain.Announcement),
		},
	}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Auth() *AuthRepository {
	return &AuthRepository{store: s}
}

func (s *Store) Sessions() *SessionStore {
	return &SessionStore{store: s}
}

func (s *Store) Stables() *StableRepository {
	return &StableRepository{store: s}
}

func (s *Store) Invitations() *InvitationRepository {
	return &InvitationRepository{store: s}
}

func (s *Store) Horses() *HorseRepository {
	return &HorseRepository{store: s}
}

func (s *Store) Events() *EventRepository {
	return &EventRepository{store: s}
}

func (s *Store) Announcements() *AnnouncementRepository {
	return &AnnouncementRepository{store: s}
}

// transaction runs fn with writers serialized. nested reports whether the caller already holds
// the transaction lock, in which case fn joins the outer transaction.
func (s *Store) transaction(ctx context.Context, nested bool, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if nested {
		return fn()
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (d data) clone() data {
	cloned := data{
		users:         make(map[string]userdomain.User, len(d.users)),
		credentials:   maps.Clone(d.credentials),
		sessions:      maps.Clone(d.sessions),
		stables:       make(map[string]stablesdomain.Stable, len(d.stables)),
		invitations:   maps.Clone(d.invitations),
		horses:        make(map[string]horsesdomain.Horse, len(d.horses)),
		events:        make(map[string]eventsdomain.Event, len(d.events)),
		announcements: maps.Clone(d.announcements),
	}
	for id, u := range d.users {
		cloned.users[id] = cloneUser(u)
	}
	for id, stable := range d.stables {
		cloned.stables[id] = cloneStable(stable)
	}
	for id, horse := range d.horses {
		cloned.horses[id] = cloneHorse(horse)
	}
	for id, event := range d.events {
		cloned.events[id] = cloneEvent(event)
	}
	return cloned
}

func cloneUser(u userdomain.User) userdomain.User {
	u.StableID = cloneString(u.StableID)
	u.PushToken = cloneString(u.PushToken)
	return u
}

func cloneStable(stable stablesdomain.Stable) stablesdomain.Stable {
	stable.Members = slices.Clone(stable.Members)
	return stable
}

func cloneHorse(horse horsesdomain.Horse) horsesdomain.Horse {
	horse.Feedings = slices.Clone(horse.Feedings)
	return horse
}

func cloneEvent(event eventsdomain.Event) eventsdomain.Event {
	event.UserID = cloneString(event.UserID)
	event.UserName = cloneString(event.UserName)
	return event
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
