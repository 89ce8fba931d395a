package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	authdomain "stable-app-go/internal/domain/auth"
	userdomain "stable-app-go/internal/domain/user"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(authdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateCredential(ctx context.Context, credential *authdomain.Credential) error {
	err := r.db.WithContext(ctx).Create(credential).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return authdomain.ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) GetCredentialByEmail(ctx context.Context, email string) (*authdomain.Credential, error) {
	var credential authdomain.Credential
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrInvalidCredentials
		}
		return nil, err
	}
	return &credential, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *userdomain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return authdomain.ErrEmailTaken
	}
	return err
}
