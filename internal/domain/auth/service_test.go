package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	userdomain "stable-app-go/internal/domain/user"
)

type fakeAuthRepo struct {
	credentials map[string]Credential
	users       map[string]userdomain.User
	failUser    error
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		credentials: make(map[string]Credential),
		users:       make(map[string]userdomain.User),
	}
}

// Transaction stages writes on a copy and commits them only when fn succeeds.
func (r *fakeAuthRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	staged := &fakeAuthRepo{
		credentials: make(map[string]Credential),
		users:       make(map[string]userdomain.User),
		failUser:    r.failUser,
	}
	for k, v := range r.credentials {
		staged.credentials[k] = v
	}
	for k, v := range r.users {
		staged.users[k] = v
	}
	if err := fn(staged); err != nil {
		return err
	}
	r.credentials = staged.credentials
	r.users = staged.users
	return nil
}

func (r *fakeAuthRepo) CreateCredential(ctx context.Context, credential *Credential) error {
	if _, ok := r.credentials[credential.Email]; ok {
		return ErrEmailTaken
	}
	r.credentials[credential.Email] = *credential
	return nil
}

func (r *fakeAuthRepo) GetCredentialByEmail(ctx context.Context, email string) (*Credential, error) {
	credential, ok := r.credentials[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return &credential, nil
}

func (r *fakeAuthRepo) CreateUser(ctx context.Context, user *userdomain.User) error {
	if r.failUser != nil {
		return r.failUser
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeAuthRepo) GetProfile(ctx context.Context, userID string) (*userdomain.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return &user, nil
}

type fakeSessions struct {
	sessions map[string]Session
}

func (f *fakeSessions) SaveSession(ctx context.Context, session Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessions) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, sessionID string) error {
	if _, ok := f.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(f.sessions, sessionID)
	return nil
}

func newTestService() (*Service, *fakeAuthRepo, *fakeSessions) {
	repo := newFakeAuthRepo()
	sessions := &fakeSessions{sessions: make(map[string]Session)}
	service := NewService(repo, sessions, repo, NewTokenIssuer("test-secret", "stable-app", time.Hour))
	service.hashCost = bcrypt.MinCost
	return service, repo, sessions
}

func signUp(t *testing.T, service *Service, email string) *AuthResult {
	t.Helper()
	result, err := service.SignUp(context.Background(), SignUpInput{Email: email, Password: "hestehest", Name: "Anna", Phone: "12345678"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	return result
}

func TestSignUpCreatesProfileWithoutStable(t *testing.T) {
	service, repo, sessions := newTestService()

	result := signUp(t, service, " Anna@Example.com ")
	if result.User.Email != "anna@example.com" || result.User.HasStable() {
		t.Fatalf("unexpected profile %+v", result.User)
	}
	if _, ok := repo.users[result.User.ID]; !ok {
		t.Fatalf("expected profile stored")
	}
	credential := repo.credentials["anna@example.com"]
	if credential.UserID != result.User.ID || credential.PasswordHash == "hestehest" {
		t.Fatalf("unexpected credential %+v", credential)
	}
	if len(sessions.sessions) != 1 || result.Token == "" {
		t.Fatalf("expected an open session")
	}
}

func TestSignUpValidation(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	cases := []SignUpInput{
		{Email: "not-an-email", Password: "hestehest", Name: "A"},
		{Email: "Anna <anna@example.com>", Password: "hestehest", Name: "A"},
		{Email: "anna@example.com", Password: "12345", Name: "A"},
		{Email: "anna@example.com", Password: "hestehest", Name: "  "},
	}
	for _, input := range cases {
		if _, err := service.SignUp(ctx, input); !errors.Is(err, ErrInvalidSignUp) {
			t.Fatalf("%+v: expected ErrInvalidSignUp, got %v", input, err)
		}
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	service, _, _ := newTestService()
	signUp(t, service, "anna@example.com")

	_, err := service.SignUp(context.Background(), SignUpInput{Email: "ANNA@example.com", Password: "another1", Name: "Other"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignUpRollsBackOnProfileFailure(t *testing.T) {
	service, repo, _ := newTestService()
	repo.failUser = errors.New("db down")

	if _, err := service.SignUp(context.Background(), SignUpInput{Email: "bo@example.com", Password: "hestehest", Name: "Bo"}); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.credentials) != 0 || len(repo.users) != 0 {
		t.Fatalf("expected nothing stored, got %d credentials, %d users", len(repo.credentials), len(repo.users))
	}
}

func TestSignInUsesOneErrorForUnknownAndWrong(t *testing.T) {
	service, _, _ := newTestService()
	signUp(t, service, "anna@example.com")
	ctx := context.Background()

	if _, err := service.SignIn(ctx, "nobody@example.com", "hestehest"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := service.SignIn(ctx, "anna@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	result, err := service.SignIn(ctx, "ANNA@example.com", "hestehest")
	if err != nil {
		t.Fatalf("expected sign in, got %v", err)
	}
	user, err := service.CurrentUser(ctx, result.Token)
	if err != nil || user.Email != "anna@example.com" {
		t.Fatalf("expected current user, got %+v, %v", user, err)
	}
}

func TestSignOutEndsSessionAndNotifies(t *testing.T) {
	service, _, _ := newTestService()
	var changes []string
	service.OnSessionChange(func(change SessionChange) {
		changes = append(changes, change.Kind)
	})

	result := signUp(t, service, "anna@example.com")
	ctx := context.Background()

	if err := service.SignOut(ctx, result.Token); err != nil {
		t.Fatalf("expected sign out, got %v", err)
	}
	if _, err := service.CurrentUser(ctx, result.Token); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after sign out, got %v", err)
	}
	if err := service.SignOut(ctx, result.Token); err != nil {
		t.Fatalf("expected repeated sign out to succeed, got %v", err)
	}
	if err := service.SignOut(ctx, "garbage"); err != nil {
		t.Fatalf("expected garbage token sign out to succeed, got %v", err)
	}

	if strings.Join(changes, ",") != "signed_in,signed_out,signed_out" {
		t.Fatalf("unexpected session changes %v", changes)
	}
}

func TestCurrentUserRejectsForeignTokens(t *testing.T) {
	service, _, sessions := newTestService()
	result := signUp(t, service, "anna@example.com")
	ctx := context.Background()

	other := NewTokenIssuer("other-secret", "stable-app", time.Hour)
	for id, session := range sessions.sessions {
		forged, err := other.Issue(session)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := service.CurrentUser(ctx, forged); !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected forged token %s rejected, got %v", id, err)
		}
	}

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := service.CurrentUser(ctx, result.Token); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected expired session rejected, got %v", err)
	}
}
