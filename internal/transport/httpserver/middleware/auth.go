package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"stable-app-go/internal/config"
	userdomain "stable-app-go/internal/domain/user"
	"stable-app-go/pkg/logger"
)

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

// User is the authenticated caller. Token is empty in skip-auth mode.
type User struct {
	ID    string
	Email string
	Name  string
	Token string
}

type SessionVerifier interface {
	CurrentUser(ctx context.Context, token string) (*userdomain.User, error)
}

type ProfileSaver interface {
	EnsureProfile(ctx context.Context, userID, email, name string) error
}

type Auth struct {
	sessions SessionVerifier
	profiles ProfileSaver
	skipAuth bool
	mockUser User
	log      logger.Logger
}

func NewAuth(cfg config.AuthConfig, sessions SessionVerifier, profiles ProfileSaver, log logger.Logger) *Auth {
	return &Auth{
		sessions: sessions,
		profiles: profiles,
		skipAuth: cfg.SkipAuth,
		mockUser: User{
			ID:    strings.TrimSpace(cfg.MockUserID),
			Email: strings.TrimSpace(cfg.MockUserEmail),
			Name:  strings.TrimSpace(cfg.MockUserName),
		},
		log: log,
	}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			user := a.mockUser
			if user.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
			if a.profiles != nil {
				if err := a.profiles.EnsureProfile(r.Context(), user.ID, user.Email, user.Name); err != nil {
					a.log.InternalError("auth: ensure mock profile failed", err, "user_id", user.ID)
				}
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			return
		}

		if a.sessions == nil {
			writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		profile, err := a.sessions.CurrentUser(r.Context(), token)
		if err != nil {
			a.log.Debug("auth: token rejected", "err", err)
			unauthorized(w)
			return
		}

		user := User{
			ID:    profile.ID,
			Email: profile.Email,
			Name:  profile.Name,
			Token: token,
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
