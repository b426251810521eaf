// Package oauthtoken manages remote OAuth identities and their stored tokens.
package oauthtoken

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

const (
	identityQueryPattern = "provider_id = ? AND provider_user_id = ?"
)

var (
	// ErrIdentityNotFound is returned when no identity row exists for the query.
	ErrIdentityNotFound = errors.New("oauth identity not found")
	// ErrNotLinked is returned when unlinking a provider the user has no binding for.
	ErrNotLinked = errors.New("oauth provider not linked to this account")
	// ErrProviderUserIDEmpty is returned when the remote identity id is empty.
	ErrProviderUserIDEmpty = errors.New("provider user id cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves the identity row for a remote identity, with the bound user
// preloaded when one exists.
func Get(db *gorm.DB, providerID uint64, providerUserID string) (*models.OAuthIdentity, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if providerUserID == "" {
		return nil, ErrProviderUserIDEmpty
	}

	var identity models.OAuthIdentity
	result := db.Preload("User").Where(identityQueryPattern, providerID, providerUserID).First(&identity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, result.Error
	}

	return &identity, nil
}

// Upsert stores the freshest token for a remote identity, creating the row on
// first contact. Repeated calls for the same identity update the single
// existing row. Two concurrent first contacts are resolved by the unique
// index on (provider_id, provider_user_id): the loser of the insert race
// re-fetches and updates the winner's row.
func Upsert(db *gorm.DB, providerID uint64, providerUserID string, token []byte) (*models.OAuthIdentity, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if providerUserID == "" {
		return nil, ErrProviderUserIDEmpty
	}

	var identity models.OAuthIdentity
	result := db.Where(identityQueryPattern, providerID, providerUserID).First(&identity)
	if result.Error == nil {
		identity.Token = token
		if err := db.Save(&identity).Error; err != nil {
			return nil, err
		}

		return &identity, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	identity = models.OAuthIdentity{
		ProviderID:     providerID,
		ProviderUserID: providerUserID,
		Token:          token,
	}

	err := db.Create(&identity).Error
	if err == nil {
		return &identity, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	// Lost the insert race, update the row the other request created.
	result = db.Where(identityQueryPattern, providerID, providerUserID).First(&identity)
	if result.Error != nil {
		return nil, result.Error
	}

	identity.Token = token
	if err := db.Save(&identity).Error; err != nil {
		return nil, err
	}

	return &identity, nil
}

// Bind attaches a remote identity to a local user.
func Bind(db *gorm.DB, identityID, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.OAuthIdentity{}).Where("id = ?", identityID).Update("user_id", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIdentityNotFound
	}

	return nil
}

// Delete removes the user's identity row at the given provider. It returns
// ErrNotLinked when the user has no binding there, leaving the table
// unchanged.
func Delete(db *gorm.DB, providerID, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("provider_id = ? AND user_id = ?", providerID, userID).Delete(&models.OAuthIdentity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotLinked
	}

	return nil
}

// ListProviderIDs returns the provider ids the user currently has bound
// identities at.
func ListProviderIDs(db *gorm.DB, userID uint64) ([]uint64, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var ids []uint64
	result := db.Model(&models.OAuthIdentity{}).Where("user_id = ?", userID).Pluck("provider_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}
