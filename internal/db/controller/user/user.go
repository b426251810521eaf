// Package user provides CRUD operations for managing user accounts.
package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

const (
	nameQueryPattern = "LOWER(name) = ?"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserNameEmpty is returned when attempting to create or look up a user with an empty name.
	ErrUserNameEmpty = errors.New("user name cannot be empty")
	// ErrUserAlreadyExists is returned when attempting to create a user whose name is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByName retrieves a user by name. Names match case-insensitively.
func GetByName(db *gorm.DB, name string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrUserNameEmpty
	}

	var user models.User
	result := db.Where(nameQueryPattern, strings.ToLower(name)).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetByID retrieves a user by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetAll retrieves all users from the database.
func GetAll(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User
	result := db.Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// Create creates a new user. The name must not be taken, compared
// case-insensitively.
func Create(db *gorm.DB, user *models.User) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if user.Name == "" {
		return nil, ErrUserNameEmpty
	}

	var existing models.User
	result := db.Where(nameQueryPattern, strings.ToLower(user.Name)).First(&existing)
	if result.Error == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	result = db.Create(user)
	if result.Error != nil {
		return nil, result.Error
	}

	return user, nil
}

// Save persists changes to an existing user.
func Save(db *gorm.DB, user *models.User) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Save(user)

	return result.Error
}
