package oauthprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.OAuthProvider{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestEnsureWellKnown(t *testing.T) {
	t.Run("nil database", func(t *testing.T) {
		require.ErrorIs(t, EnsureWellKnown(nil), ErrDBNil)
	})

	t.Run("creates missing rows inactive", func(t *testing.T) {
		db := setupTestDB(t)

		require.NoError(t, EnsureWellKnown(db))

		for _, name := range []string{models.ProviderGitHub, models.ProviderGoogle, models.ProviderGeneric} {
			provider, err := Get(db, name)
			require.NoError(t, err)
			assert.False(t, provider.Active, "well known providers must start inactive")
			assert.Empty(t, provider.ClientID)
		}

		generic, err := Get(db, models.ProviderGeneric)
		require.NoError(t, err)
		assert.Equal(t, "username", generic.UsernameField)
		assert.Equal(t, "email", generic.EmailField)
	})

	t.Run("leaves existing rows untouched", func(t *testing.T) {
		db := setupTestDB(t)

		require.NoError(t, db.Create(&models.OAuthProvider{
			Name:     models.ProviderGitHub,
			Active:   true,
			ClientID: "configured-client",
		}).Error)

		require.NoError(t, EnsureWellKnown(db))

		provider, err := Get(db, models.ProviderGitHub)
		require.NoError(t, err)
		assert.True(t, provider.Active)
		assert.Equal(t, "configured-client", provider.ClientID)

		var count int64
		require.NoError(t, db.Model(&models.OAuthProvider{}).Count(&count).Error)
		assert.Equal(t, int64(3), count)
	})

	t.Run("idempotent", func(t *testing.T) {
		db := setupTestDB(t)

		require.NoError(t, EnsureWellKnown(db))
		require.NoError(t, EnsureWellKnown(db))

		var count int64
		require.NoError(t, db.Model(&models.OAuthProvider{}).Count(&count).Error)
		assert.Equal(t, int64(3), count)
	})
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		providerName  string
		seedData      []models.OAuthProvider
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			providerName:  "github",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			providerName:  "",
			expectedError: ErrProviderNameEmpty,
		},
		{
			name:          "provider not found",
			dbParam:       db,
			providerName:  "nonexistent",
			expectedError: ErrProviderNotFound,
		},
		{
			name:         "successful get",
			dbParam:      db,
			providerName: "github",
			seedData: []models.OAuthProvider{
				{Name: "github", ClientID: "abc"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM oauth_providers")
			}

			for _, p := range tc.seedData {
				require.NoError(t, tc.dbParam.Create(&p).Error)
			}

			provider, err := Get(tc.dbParam, tc.providerName)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, provider)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, provider)
				assert.Equal(t, tc.providerName, provider.Name)
			}
		})
	}
}

func TestGetActive(t *testing.T) {
	t.Run("nil database", func(t *testing.T) {
		providers, err := GetActive(nil)
		require.ErrorIs(t, err, ErrDBNil)
		assert.Nil(t, providers)
	})

	t.Run("filters inactive and unconfigured providers", func(t *testing.T) {
		db := setupTestDB(t)

		seed := []models.OAuthProvider{
			{Name: "github", Active: true, ClientID: "id", ClientSecret: "secret"},
			{Name: "google", Active: false, ClientID: "id", ClientSecret: "secret"},
			{Name: "generic", Active: true},
		}
		for _, p := range seed {
			require.NoError(t, db.Create(&p).Error)
		}

		providers, err := GetActive(db)
		require.NoError(t, err)
		require.Len(t, providers, 1)
		assert.Equal(t, "github", providers[0].Name)
	})
}

func TestSave(t *testing.T) {
	db := setupTestDB(t)

	t.Run("nil database", func(t *testing.T) {
		require.ErrorIs(t, Save(nil, &models.OAuthProvider{Name: "github"}), ErrDBNil)
	})

	t.Run("empty name", func(t *testing.T) {
		require.ErrorIs(t, Save(db, &models.OAuthProvider{}), ErrProviderNameEmpty)
	})

	t.Run("create and update", func(t *testing.T) {
		provider := &models.OAuthProvider{Name: "generic", BaseURL: "https://idp.example.com"}
		require.NoError(t, Save(db, provider))
		require.NotZero(t, provider.ID)

		provider.Active = true
		provider.ClientID = "id"
		require.NoError(t, Save(db, provider))

		stored, err := Get(db, "generic")
		require.NoError(t, err)
		assert.True(t, stored.Active)
		assert.Equal(t, "id", stored.ClientID)
	})
}
