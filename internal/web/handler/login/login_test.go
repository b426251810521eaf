package login

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/auth"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/oauthtoken"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/handler"
	websess "github.com/GoShelf-Admin/GoShelf-Admin/internal/web/session"
)

// noOpViews is a minimal Fiber Views engine used for tests.
// It writes the "error" field from the provided fiber.Map (if any)
// so tests can assert error messages rendered by handlers.
type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		if v, exists := m["error"]; exists && v != nil {
			_, _ = io.WriteString(w, v.(string))
			return nil
		}
	}
	// write template name to have some content
	_, _ = io.WriteString(w, name)

	return nil
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{Views: noOpViews{}})
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(&models.User{}, &models.OAuthProvider{}, &models.OAuthIdentity{})
	require.NoError(t, err, "failed to migrate models")

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Title:   "GoShelf-Admin",
		DevMode: false,
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Auth: config.Auth{
			LoginType: config.LoginTypeLocal,
			LocalDB:   config.LocalDBAuth{Enabled: true},
		},
	}
}

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func initSessionStore() {
	websess.Init(&testStorage{data: make(map[string][]byte)})
}

func createLocalUser(t *testing.T, db *gorm.DB, name, password string) *models.User {
	t.Helper()

	account := &models.User{
		Name:       name,
		Email:      name + "@example.com",
		Password:   models.HashPassword(password),
		Active:     true,
		Role:       models.DefaultRole,
		AuthSource: models.AuthSourceLocal,
	}
	require.NoError(t, db.Create(account).Error)

	return account
}

func performPost(t *testing.T, app *fiber.App, target string, form url.Values, cookie string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: cookie})
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func TestPostLocalSuccessSetsCookieAndRedirects(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db, nil))

	createLocalUser(t, db, "bob", "s3cr3t")

	form := url.Values{
		"name":     {"bob"},
		"password": {"s3cr3t"},
	}
	resp := performPost(t, app, Path, form, "")

	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	setCookie := resp.Header.Get("Set-Cookie")
	require.Contains(t, setCookie, handler.SessionCookie+"=")
	assert.Contains(t, setCookie, "HttpOnly")
	assert.Contains(t, setCookie, "secure")
}

func TestPostLocalInvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db, nil))

	createLocalUser(t, db, "bob", "s3cr3t")

	testCases := []struct {
		name string
		form url.Values
	}{
		{name: "wrong password", form: url.Values{"name": {"bob"}, "password": {"wrong"}}},
		{name: "unknown user", form: url.Values{"name": {"nobody"}, "password": {"s3cr3t"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performPost(t, app, Path, tc.form, "")

			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "Invalid username or password")
		})
	}
}

func TestPostLocalDisabledAccount(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db, nil))

	account := createLocalUser(t, db, "bob", "s3cr3t")
	account.Active = false
	require.NoError(t, db.Save(account).Error)

	resp := performPost(t, app, Path, url.Values{"name": {"bob"}, "password": {"s3cr3t"}}, "")

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Invalid username or password")
}

func TestPostBindsPendingOAuthIdentity(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	// Active provider so the registry knows its id.
	require.NoError(t, db.Create(&models.OAuthProvider{
		Name:             models.ProviderGitHub,
		Active:           true,
		ClientID:         "id",
		ClientSecret:     "secret",
		AuthorizationURL: "https://github.example.com/authorize",
		TokenURL:         "https://github.example.com/token",
	}).Error)

	registry, err := auth.NewRegistry(context.Background(), db, "http://localhost")
	require.NoError(t, err)

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db, registry))

	bob := createLocalUser(t, db, "bob", "s3cr3t")

	// Unbound identity plus the anonymous session marker a callback left behind.
	_, err = oauthtoken.Upsert(db, 1, "583231", []byte(`{"access_token":"abc"}`))
	require.NoError(t, err)

	anonID := "anon-session"
	anonData := new(websess.Data)
	anonData.SetOAuthMarker(models.ProviderGitHub, "583231")
	require.NoError(t, anonData.Write(anonID, time.Minute))

	resp := performPost(t, app, Path, url.Values{"name": {"bob"}, "password": {"s3cr3t"}}, anonID)

	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	stored, err := oauthtoken.Get(db, 1, "583231")
	require.NoError(t, err)
	require.True(t, stored.Bound())
	assert.Equal(t, bob.ID, *stored.UserID)
}

func TestGetRendersLoginPage(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp()

	initSessionStore()

	var s Service
	require.NoError(t, s.Init(app, newTestConfig(), db, nil))

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), TemplateName)
}
