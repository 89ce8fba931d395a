package inmemory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	eventsdomain "stable-app-go/internal/domain/events"
	horsesdomain "stable-app-go/internal/domain/horses"
	invitationsdomain "stable-app-go/internal/domain/invitations"
	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
	"stable-app-go/internal/notify"
	"stable-app-go/internal/repository/inmemory"
	"stable-app-go/pkg/logger"
)

type world struct {
	store       *inmemory.Store
	users       *userdomain.Service
	stables     *stablesdomain.Service
	invitations *invitationsdomain.Service
	horses      *horsesdomain.Service
	events      *eventsdomain.Service
	notified    *capturingNotifier
}

type capturingNotifier struct {
	messages []notify.Message
}

func (c *capturingNotifier) Notify(ctx context.Context, to notify.Recipient, msg notify.Message) error {
	c.messages = append(c.messages, msg)
	return nil
}

func newWorld() *world {
	store := inmemory.NewStore()
	users := userdomain.NewService(store.Users())
	stables := stablesdomain.NewService(store.Stables(), users, inmemory.NewStableCache(), time.Minute)
	notifier := &capturingNotifier{}
	return &world{
		store:       store,
		users:       users,
		stables:     stables,
		invitations: invitationsdomain.NewService(store.Invitations(), stables, users, notifier, "Stalden", logger.Nop()),
		horses:      horsesdomain.NewService(store.Horses(), stables),
		events:      eventsdomain.NewService(store.Events(), stables),
		notified:    notifier,
	}
}

func (w *world) addUser(t *testing.T, id, name string) {
	t.Helper()
	err := w.store.Users().Create(context.Background(), &userdomain.User{ID: id, Name: name, Email: id + "@example.com"})
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func (w *world) createStable(t *testing.T, adminID, name string) *stablesdomain.Stable {
	t.Helper()
	stable, err := w.stables.CreateStable(context.Background(), adminID, stablesdomain.CreateStableInput{Name: name})
	if err != nil {
		t.Fatalf("create stable: %v", err)
	}
	return stable
}

func TestCreateStableMakesCreatorAdminMember(t *testing.T) {
	w := newWorld()
	w.addUser(t, "u1", "Ulla")

	stable := w.createStable(t, "u1", "Lunden")

	if stable.AdminID != "u1" || stable.NumOfMembers() != 1 || !stable.HasMember("u1") {
		t.Fatalf("unexpected stable %+v", stable)
	}
	profile, err := w.users.GetProfile(context.Background(), "u1")
	if err != nil || profile.StableRef() != stable.ID {
		t.Fatalf("expected creator assigned to stable, got %+v, %v", profile, err)
	}

	if _, err := w.stables.CreateStable(context.Background(), "u1", stablesdomain.CreateStableInput{Name: "Second"}); !errors.Is(err, stablesdomain.ErrAlreadyInStable) {
		t.Fatalf("expected ErrAlreadyInStable, got %v", err)
	}
}

func TestInviteAndAccept(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.addUser(t, "u1", "Ulla")
	w.addUser(t, "u2", "Bo")
	stable := w.createStable(t, "u1", "Lunden")

	invitation, err := w.invitations.Invite(ctx, "u1", " U2@example.com ")
	if err != nil {
		t.Fatalf("expected invite, got %v", err)
	}
	if invitation.InvitedUserID != "u2" || invitation.StableID != stable.ID || invitation.Status != invitationsdomain.StatusPending {
		t.Fatalf("unexpected invitation %+v", invitation)
	}
	if len(w.notified.messages) != 1 || w.notified.messages[0].Kind != notify.KindInvitation {
		t.Fatalf("expected invitation notification, got %+v", w.notified.messages)
	}

	if _, err := w.invitations.Invite(ctx, "u1", "u2@example.com"); !errors.Is(err, invitationsdomain.ErrAlreadyInvited) {
		t.Fatalf("expected ErrAlreadyInvited, got %v", err)
	}

	// the member cache must not serve the stale single-member stable after accepting
	if _, err := w.stables.GetStableForUser(ctx, "u1"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	joined, err := w.invitations.Accept(ctx, "u2", invitation.ID)
	if err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
	if joined.NumOfMembers() != 2 || joined.Members[0] != "u1" || joined.Members[1] != "u2" {
		t.Fatalf("unexpected members %v", joined.Members)
	}

	adminView, err := w.stables.GetStableForUser(ctx, "u1")
	if err != nil || adminView.NumOfMembers() != 2 {
		t.Fatalf("expected admin to see 2 members, got %+v, %v", adminView, err)
	}
	if !stablesdomain.DeriveRole(adminView, adminView.AdminID).IsMember {
		t.Fatalf("expected admin to remain a member")
	}

	profile, _ := w.users.GetProfile(ctx, "u2")
	if profile.StableRef() != stable.ID {
		t.Fatalf("expected invitee assigned, got %q", profile.StableRef())
	}
	if _, err := w.invitations.PendingFor(ctx, "u2"); !errors.Is(err, invitationsdomain.ErrInvitationNotFound) {
		t.Fatalf("expected invitation gone, got %v", err)
	}
	if _, err := w.invitations.Accept(ctx, "u2", invitation.ID); !errors.Is(err, invitationsdomain.ErrInvitationNotFound) {
		t.Fatalf("expected second accept to fail, got %v", err)
	}
}

func TestInviteRules(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.addUser(t, "u1", "Ulla")
	w.addUser(t, "u2", "Bo")
	w.addUser(t, "u3", "Kim")
	w.createStable(t, "u1", "Lunden")
	w.createStable(t, "u3", "Engen")

	if _, err := w.invitations.Invite(ctx, "u2", "u1@example.com"); !errors.Is(err, stablesdomain.ErrStableNotFound) {
		t.Fatalf("expected user without stable rejected, got %v", err)
	}
	if _, err := w.invitations.Invite(ctx, "u1", "ghost@example.com"); !errors.Is(err, userdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := w.invitations.Invite(ctx, "u1", "u3@example.com"); !errors.Is(err, stablesdomain.ErrAlreadyInStable) {
		t.Fatalf("expected ErrAlreadyInStable, got %v", err)
	}
	if _, err := w.invitations.Invite(ctx, "u1", ""); !errors.Is(err, invitationsdomain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestDeclineRemovesOnlyTheInvitation(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.addUser(t, "u1", "Ulla")
	w.addUser(t, "u2", "Bo")
	w.addUser(t, "u3", "Kim")
	w.createStable(t, "u1", "Lunden")

	invitation, err := w.invitations.Invite(ctx, "u1", "u2@example.com")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	if err := w.invitations.Decline(ctx, "u3", invitation.ID); !errors.Is(err, invitationsdomain.ErrInvitationNotFound) {
		t.Fatalf("expected other users unable to decline, got %v", err)
	}
	if err := w.invitations.Decline(ctx, "u2", invitation.ID); err != nil {
		t.Fatalf("expected decline, got %v", err)
	}
	if _, err := w.invitations.PendingFor(ctx, "u2"); !errors.Is(err, invitationsdomain.ErrInvitationNotFound) {
		t.Fatalf("expected invitation gone, got %v", err)
	}

	stable, _ := w.stables.GetStableForUser(ctx, "u1")
	if stable.NumOfMembers() != 1 {
		t.Fatalf("expected members untouched, got %v", stable.Members)
	}
	profile, _ := w.users.GetProfile(ctx, "u2")
	if profile.HasStable() {
		t.Fatalf("expected decliner without stable")
	}
}

func TestAcceptRollsBackWhenInviteeJoinedElsewhere(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.addUser(t, "u1", "Ulla")
	w.addUser(t, "u2", "Bo")
	w.createStable(t, "u1", "Lunden")

	invitation, err := w.invitations.Invite(ctx, "u1", "u2@example.com")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	w.createStable(t, "u2", "Eget")

	if _, err := w.invitations.Accept(ctx, "u2", invitation.ID); !errors.Is(err, stablesdomain.ErrAlreadyInStable) {
		t.Fatalf("expected ErrAlreadyInStable, got %v", err)
	}
	if _, err := w.invitations.PendingFor(ctx, "u2"); err != nil {
		t.Fatalf("expected invitation kept after failed accept, got %v", err)
	}
	stable, _ := w.stables.GetStableForUser(ctx, "u1")
	if stable.HasMember("u2") {
		t.Fatalf("expected no member added")
	}
}

func TestHorseUpsertReplacesWholeHorse(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.addUser(t, "u1", "Ulla")

	created, err := w.horses.UpsertHorse(ctx, "u1", horsesdomain.HorseInput{
		Name:  "Luna",
		Breed: "Islandsk",
		Age:   5,
		Color: "brun",
		Feedings: []horsesdomain.Feeding{
			{Food: "Hø", Quantity: "3", Measurement: "kg"},
			{},
		},
	})
	if err != nil {
		t.Fatalf("expected create, got %v", err)
	}
	if created.OwnerID != "u1" || len(created.Feedings) != 1 {
		t.Fatalf("unexpected horse %+v", created)
	}

	replaced, err := w.horses.UpsertHorse(ctx, "u1", horsesdomain.HorseInput{
		ID:    created.ID,
		Name:  "Luna",
		Breed: "Islandsk",
		Age:   6,
		Color: "brun",
	})
	if err != nil {
		t.Fatalf("expected replace, got %v", err)
	}
	if replaced.Age != 6 || len(replaced.Feedings) != 0 || replaced.OwnerID != "u1" {
		t.Fatalf("expected full replacement, got %+v", replaced)
	}

	horses, err := w.horses.ListByOwner(ctx, "u1")
	if err != nil || len(horses) != 1 || horses[0].Age != 6 {
		t.Fatalf("expected one stored horse aged 6, got %+v, %v", horses, err)
	}
}

func TestHorseEditPermissions(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.addUser(t, "u1", "Ulla")
	w.addUser(t, "u2", "Bo")
	w.addUser(t, "u3", "Kim")
	w.createStable(t, "u1", "Lunden")
	invitation, _ := w.invitations.Invite(ctx, "u1", "u2@example.com")
	if _, err := w.invitations.Accept(ctx, "u2", invitation.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	horse, err := w.horses.UpsertHorse(ctx, "u2", horsesdomain.HorseInput{Name: "Storm", Breed: "Fjord", Age: 9, Color: "gul"})
	if err != nil {
		t.Fatalf("create horse: %v", err)
	}

	input := horsesdomain.HorseInput{ID: horse.ID, Name: "Storm", Breed: "Fjord", Age: 10, Color: "gul"}
	if _, err := w.horses.UpsertHorse(ctx, "u3", input); !errors.Is(err, horsesdomain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for outsider, got %v", err)
	}
	edited, err := w.horses.UpsertHorse(ctx, "u1", input)
	if err != nil || edited.OwnerID != "u2" || edited.Age != 10 {
		t.Fatalf("expected admin edit keeping owner, got %+v, %v", edited, err)
	}

	roster, err := w.horses.ListForStable(ctx, "u1")
	if err != nil || len(roster) != 1 {
		t.Fatalf("expected stable roster with one horse, got %+v, %v", roster, err)
	}
	if _, err := w.horses.UpsertHorse(ctx, "u1", horsesdomain.HorseInput{Name: "X", Breed: "Y", Color: "Z"}); !errors.Is(err, horsesdomain.ErrInvalidHorse) {
		t.Fatalf("expected ErrInvalidHorse for missing age, got %v", err)
	}
}

func TestEventSignUpScenario(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.addUser(t, "u1", "Ulla")
	w.addUser(t, "u2", "Bo")
	w.addUser(t, "u3", "Kim")
	w.createStable(t, "u1", "Lunden")
	for _, id := range []string{"u2", "u3"} {
		invitation, err := w.invitations.Invite(ctx, "u1", id+"@example.com")
		if err != nil {
			t.Fatalf("invite %s: %v", id, err)
		}
		if _, err := w.invitations.Accept(ctx, id, invitation.ID); err != nil {
			t.Fatalf("accept %s: %v", id, err)
		}
	}

	event, err := w.events.CreateEvent(ctx, "u1", eventsdomain.EventInput{
		Date:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Time:  "08:00",
		Title: eventsdomain.TitleIn,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	claimed, err := w.events.SignUp(ctx, "u2", "Bo", event.ID)
	if err != nil || !claimed.ClaimedBy("u2") || *claimed.UserName != "Bo" {
		t.Fatalf("expected u2 to hold the event, got %+v, %v", claimed, err)
	}
	if _, err := w.events.SignUp(ctx, "u3", "Kim", event.ID); !errors.Is(err, eventsdomain.ErrAlreadyTaken) {
		t.Fatalf("expected ErrAlreadyTaken, got %v", err)
	}

	if _, err := w.events.Resign(ctx, "u2", event.ID); err != nil {
		t.Fatalf("resign: %v", err)
	}
	again, err := w.events.SignUp(ctx, "u3", "Kim", event.ID)
	if err != nil || !again.ClaimedBy("u3") {
		t.Fatalf("expected u3 to claim after resign, got %+v, %v", again, err)
	}
}

func TestRecurringGenerationTwiceYieldsOneSlotPerDay(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.addUser(t, "u1", "Ulla")
	w.createStable(t, "u1", "Lunden")

	input := eventsdomain.RecurringInput{Start: time.Now(), Days: 14, InTime: "08:00", OutTime: "16:00"}
	if _, err := w.events.GenerateRecurringInOut(ctx, "u1", input); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := w.events.GenerateRecurringInOut(ctx, "u1", input); err != nil {
		t.Fatalf("second run: %v", err)
	}

	events, err := w.events.ListEvents(ctx, "u1", eventsdomain.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 28 {
		t.Fatalf("expected 28 events, got %d", len(events))
	}
	ins := 0
	for _, event := range events {
		if event.Title == eventsdomain.TitleIn {
			ins++
		}
	}
	if ins != 14 {
		t.Fatalf("expected 14 Ind events, got %d", ins)
	}
}
