package auth

import (
	"time"

	userdomain "stable-app-go/internal/domain/user"
)

const (
	SessionSignedIn  = "signed_in"
	SessionSignedOut = "signed_out"

	MinPasswordLength = 6
)

type Credential struct {
	UserID       string    `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *userdomain.User
}

type SessionChange struct {
	UserID string
	Kind   string
}
