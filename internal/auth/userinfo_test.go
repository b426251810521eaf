package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

func TestExtractIdentity(t *testing.T) {
	testCases := []struct {
		name          string
		blueprint     *Blueprint
		payload       string
		expected      Identity
		expectedError error
	}{
		{
			name:      "github numeric id and login",
			blueprint: githubBlueprint(),
			payload:   `{"id": 583231, "login": "octocat", "email": "octocat@github.com"}`,
			expected:  Identity{ID: "583231", Username: "octocat", Email: "octocat@github.com"},
		},
		{
			name: "google subject",
			blueprint: &Blueprint{
				Provider: models.OAuthProvider{ID: 2, Name: models.ProviderGoogle},
			},
			payload:  `{"sub": "110248495921238986420", "email": "alice@gmail.com"}`,
			expected: Identity{ID: "110248495921238986420", Email: "alice@gmail.com"},
		},
		{
			name:      "generic prefers sub over configured fields",
			blueprint: genericBlueprint(),
			payload:   `{"sub": "u-1", "username": "alice", "email": "alice@x.com"}`,
			expected:  Identity{ID: "u-1", Username: "alice", Email: "alice@x.com"},
		},
		{
			name:      "generic falls back to username claim",
			blueprint: genericBlueprint(),
			payload:   `{"username": "alice", "email": "alice@x.com"}`,
			expected:  Identity{ID: "alice", Username: "alice", Email: "alice@x.com"},
		},
		{
			name: "generic custom field mapping",
			blueprint: &Blueprint{
				Provider: models.OAuthProvider{
					ID:            3,
					Name:          models.ProviderGeneric,
					UsernameField: "preferred_username",
					EmailField:    "mail",
				},
				AutoProvision: true,
			},
			payload:  `{"sub": "u-1", "preferred_username": "alice", "mail": "alice@x.com"}`,
			expected: Identity{ID: "u-1", Username: "alice", Email: "alice@x.com"},
		},
		{
			name:      "admin flag",
			blueprint: genericBlueprint(),
			payload:   `{"sub": "u-1", "username": "alice", "email": "alice@x.com", "admin": true}`,
			expected:  Identity{ID: "u-1", Username: "alice", Email: "alice@x.com", Admin: true},
		},
		{
			name:      "admin group membership",
			blueprint: genericBlueprint(),
			payload:   `{"sub": "u-1", "username": "alice", "email": "alice@x.com", "groups": ["users", "admin"]}`,
			expected:  Identity{ID: "u-1", Username: "alice", Email: "alice@x.com", Admin: true},
		},
		{
			name:      "non admin groups",
			blueprint: genericBlueprint(),
			payload:   `{"sub": "u-1", "username": "alice", "email": "alice@x.com", "groups": ["users"]}`,
			expected:  Identity{ID: "u-1", Username: "alice", Email: "alice@x.com"},
		},
		{
			name:          "no stable id",
			blueprint:     genericBlueprint(),
			payload:       `{"email": "alice@x.com"}`,
			expectedError: ErrNoStableID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decoder := json.NewDecoder(strings.NewReader(tc.payload))
			decoder.UseNumber()

			var claims map[string]any
			require.NoError(t, decoder.Decode(&claims))

			identity, err := tc.blueprint.extractIdentity(claims)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, identity)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, *identity)
			}
		})
	}
}

func TestFetchIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 583231, "login": "octocat", "email": "octocat@github.com"}`))
	}))
	defer server.Close()

	bp := githubBlueprint()
	bp.Provider.UserinfoURL = server.URL

	token := &oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"}

	identity, err := bp.FetchIdentity(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "583231", Username: "octocat", Email: "octocat@github.com"}, *identity)
}

func TestFetchIdentityErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	bp := githubBlueprint()
	bp.Provider.UserinfoURL = server.URL

	identity, err := bp.FetchIdentity(context.Background(), &oauth2.Token{AccessToken: "x"})
	require.ErrorIs(t, err, ErrUserinfoFailed)
	assert.Nil(t, identity)
}

func TestFetchIdentityUnverifiedAdminClaimIsHonored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub": "u-1", "username": "alice", "email": "alice@x.com", "admin": true}`))
	}))
	defer server.Close()

	bp := genericBlueprint()
	bp.Provider.UserinfoURL = server.URL

	identity, err := bp.FetchIdentity(context.Background(), &oauth2.Token{AccessToken: "x"})
	require.NoError(t, err)
	assert.True(t, identity.Admin, "without a verifier the userinfo claim decides")
}
