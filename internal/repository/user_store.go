package repository

import (
	"context"
	"errors"
	"fmt"

	"reportes-ciudadanos/internal/auth"
	"reportes-ciudadanos/internal/models"

	"gorm.io/gorm"
)

// UserStore is the credential store.
type UserStore interface {
	Create(ctx context.Context, email, password string, role models.UserRole) (bool, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type gormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

// Create stores a new account with a hashed password. It returns false when
// the email is already taken.
func (s *gormUserStore) Create(ctx context.Context, email, password string, role models.UserRole) (bool, error) {
	parsed, ok := models.ParseRole(string(role))
	if !ok {
		return false, fmt.Errorf("unknown role %q", role)
	}
	role = parsed

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user %s: %w", email, err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// concurrent insert of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("create user %s: %w", email, err)
	}
	return true, nil
}

func (s *gormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
