package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/user"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

// ErrInvalidOldPassword is returned when the provided old password does not
// match the user's current password.
var ErrInvalidOldPassword = errors.New("invalid old password")

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user against the local database. The name
// matches case-insensitively.
func (p *LocalProvider) Authenticate(name, password string) (*models.User, error) {
	account, err := user.GetByName(p.db, name)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if account.AuthSource != models.AuthSourceLocal {
		return nil, ErrUserNotFound
	}

	if !account.Active {
		return nil, ErrUserAccountDisabled
	}

	if !account.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return account, nil
}

// ChangePassword changes a user's password after verifying the old one.
func (p *LocalProvider) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	account, err := user.GetByID(p.db, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	if !account.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	account.Password = models.HashPassword(newPassword)

	return user.Save(p.db, account)
}
