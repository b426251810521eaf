// Package oauthprovider provides CRUD operations for OAuth provider configurations.
package oauthprovider

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrProviderNotFound is returned when a provider is not found.
	ErrProviderNotFound = errors.New("oauth provider not found")
	// ErrProviderNameEmpty is returned when looking up a provider with an empty name.
	ErrProviderNameEmpty = errors.New("oauth provider name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// EnsureWellKnown creates the well known provider rows (github, google,
// generic) when they are missing. The rows start inactive so an administrator
// only has to fill in credentials and flip the switch. Existing rows are left
// untouched.
func EnsureWellKnown(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	wellKnown := []models.OAuthProvider{
		{
			Name:             models.ProviderGitHub,
			Scope:            "user:email",
			AuthorizationURL: "https://github.com/login/oauth/authorize",
			TokenURL:         "https://github.com/login/oauth/access_token",
			UserinfoURL:      "https://api.github.com/user",
		},
		{
			Name:             models.ProviderGoogle,
			Scope:            "openid email profile",
			AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:         "https://oauth2.googleapis.com/token",
			UserinfoURL:      "https://openidconnect.googleapis.com/v1/userinfo",
			MetadataURL:      "https://accounts.google.com/.well-known/openid-configuration",
		},
		{
			Name:          models.ProviderGeneric,
			Scope:         "openid email profile",
			UsernameField: "username",
			EmailField:    "email",
		},
	}

	for i := range wellKnown {
		var existing models.OAuthProvider
		result := db.Where(nameQueryPattern, wellKnown[i].Name).First(&existing)
		if result.Error == nil {
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		if err := db.Create(&wellKnown[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Get retrieves a provider by name.
func Get(db *gorm.DB, name string) (*models.OAuthProvider, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrProviderNameEmpty
	}

	var provider models.OAuthProvider
	result := db.Where(nameQueryPattern, name).First(&provider)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, result.Error
	}

	return &provider, nil
}

// GetByID retrieves a provider by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.OAuthProvider, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var provider models.OAuthProvider
	result := db.First(&provider, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, result.Error
	}

	return &provider, nil
}

// GetAll retrieves all providers from the database.
func GetAll(db *gorm.DB) ([]models.OAuthProvider, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var providers []models.OAuthProvider
	result := db.Order("name").Find(&providers)
	if result.Error != nil {
		return nil, result.Error
	}

	return providers, nil
}

// GetActive retrieves the providers that participate in login: active rows
// carrying client credentials.
func GetActive(db *gorm.DB) ([]models.OAuthProvider, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var providers []models.OAuthProvider
	result := db.Where("active = ? AND client_id <> '' AND client_secret <> ''", true).
		Order("name").Find(&providers)
	if result.Error != nil {
		return nil, result.Error
	}

	return providers, nil
}

// Save persists changes to a provider row, creating it when new.
func Save(db *gorm.DB, provider *models.OAuthProvider) error {
	if db == nil {
		return ErrDBNil
	}
	if provider.Name == "" {
		return ErrProviderNameEmpty
	}

	result := db.Save(provider)

	return result.Error
}
