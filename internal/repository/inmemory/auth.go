package inmemory

import (
	"context"
	"errors"
	"time"

	authdomain "stable-app-go/internal/domain/auth"
	userdomain "stable-app-go/internal/domain/user"
)

type AuthRepository struct {
	store *Store
	inTx  bool
}

func (r *AuthRepository) Transaction(ctx context.Context, fn func(authdomain.Repository) error) error {
	return r.store.transaction(ctx, r.inTx, func() error {
		return fn(&AuthRepository{store: r.store, inTx: true})
	})
}

func (r *AuthRepository) CreateCredential(ctx context.Context, credential *authdomain.Credential) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.data.credentials[credential.Email]; ok {
		return authdomain.ErrEmailTaken
	}
	credential.CreatedAt = time.Now().UTC()
	r.store.data.credentials[credential.Email] = *credential
	return nil
}

func (r *AuthRepository) GetCredentialByEmail(ctx context.Context, email string) (*authdomain.Credential, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	credential, ok := r.store.data.credentials[email]
	if !ok {
		return nil, authdomain.ErrInvalidCredentials
	}
	return &credential, nil
}

func (r *AuthRepository) CreateUser(ctx context.Context, user *userdomain.User) error {
	if err := r.store.createUser(user); err != nil {
		if errors.Is(err, userdomain.ErrEmailTaken) {
			return authdomain.ErrEmailTaken
		}
		return err
	}
	return nil
}

type SessionStore struct {
	store *Store
}

func (s *SessionStore) SaveSession(ctx context.Context, session authdomain.Session) error {
	s.store.mu.Lock()
	s.store.data.sessions[session.ID] = session
	s.store.mu.Unlock()
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*authdomain.Session, error) {
	now := time.Now()

	s.store.mu.RLock()
	session, ok := s.store.data.sessions[sessionID]
	s.store.mu.RUnlock()
	if !ok {
		return nil, authdomain.ErrSessionNotFound
	}

	if !session.ExpiresAt.After(now) {
		s.store.mu.Lock()
		delete(s.store.data.sessions, sessionID)
		s.store.mu.Unlock()
		return nil, authdomain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.store.mu.Lock()
	delete(s.store.data.sessions, sessionID)
	s.store.mu.Unlock()
	return nil
}
