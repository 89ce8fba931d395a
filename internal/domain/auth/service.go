package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	userdomain "stable-app-go/internal/domain/user"
)

type Service struct {
	repo     Repository
	sessions SessionStore
	profiles Profiles
	tokens   *TokenIssuer
	hashCost int
	now      func() time.Time

	mu        sync.RWMutex
	listeners []func(SessionChange)
}

func NewService(repo Repository, sessions SessionStore, profiles Profiles, tokens *TokenIssuer) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		profiles: profiles,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	email := userdomain.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidSignUp)
	}
	if len(input.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignUp, MinPasswordLength)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSignUp)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := userdomain.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Phone: strings.TrimSpace(input.Phone),
	}
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetCredentialByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, ErrInvalidCredentials) {
			return err
		}

		if err := tx.CreateUser(ctx, &profile); err != nil {
			return err
		}
		return tx.CreateCredential(ctx, &Credential{
			UserID:       profile.ID,
			Email:        email,
			PasswordHash: string(hash),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, &profile)
}

// SignIn reports ErrInvalidCredentials for an unknown email and a wrong password alike.
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = userdomain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	credential, err := s.repo.GetCredentialByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profiles.GetProfile(ctx, credential.UserID)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, profile)
}

// SignOut ends the session behind token. Unknown or expired sessions are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	sessionID, userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	s.emit(SessionChange{UserID: userID, Kind: SessionSignedOut})
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*userdomain.User, error) {
	sessionID, userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if isNotAuthenticated(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	if session.UserID != userID || !session.ExpiresAt.After(s.now()) {
		return nil, ErrNotAuthenticated
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return profile, nil
}

// OnSessionChange registers fn for every sign-in and sign-out.
func (s *Service) OnSessionChange(fn func(SessionChange)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Service) openSession(ctx context.Context, profile *userdomain.User) (*AuthResult, error) {
	now := s.now().UTC()
	session := Session{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}

	token, err := s.tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.emit(SessionChange{UserID: profile.ID, Kind: SessionSignedIn})
	return &AuthResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      profile,
	}, nil
}

func (s *Service) emit(change SessionChange) {
	s.mu.RLock()
	listeners := make([]func(SessionChange), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(change)
	}
}
