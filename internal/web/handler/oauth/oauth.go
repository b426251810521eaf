// Package oauth provides the OAuth2 link, unlink and callback handlers. One
// parameterized handler serves every provider; the per-provider differences
// live in the registry's blueprints.
package oauth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/auth"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/oauthtoken"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/uniuri"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/flash"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/handler"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/handler/login"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/session"
)

const (
	// LinkPath starts the flow for one provider.
	LinkPath = "/link/:provider"

	// UnlinkPath removes the current account's binding at one provider.
	UnlinkPath = "/unlink/:provider"

	// CallbackPath is where providers redirect after the authorization step.
	CallbackPath = "/login/:provider/authorized"

	// statePrefix keys the pending state tokens in the session storage.
	statePrefix = "oauth:state:"

	// stateExpiry bounds how long an authorization redirect may take.
	stateExpiry = 10 * time.Minute
)

// Service is the OAuth handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	registry *auth.Registry
}

// Handler is the OAuth handler.
var Handler = Service{}

// Init initializes the OAuth handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, registry *auth.Registry) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.registry = registry

	// register routes
	app.Get(LinkPath, s.Link)
	app.Get(UnlinkPath, s.Unlink)
	app.Get(CallbackPath, s.Callback)

	return nil
}

// Link starts the authorization-code flow for the named provider. Inactive
// or unknown providers answer 404.
func (s *Service) Link(c *fiber.Ctx) error {
	blueprint, ok := s.registry.Get(c.Params("provider"))
	if !ok {
		return notFound(c)
	}

	sessionID, err := s.ensureSession(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to establish session for oauth flow")

		return c.Redirect(login.Path)
	}

	state := uniuri.NewLen(uniuri.StateLen)
	if err := session.Store.Storage.Set(statePrefix+state,
		[]byte(blueprint.Provider.Name), stateExpiry); err != nil {
		log.Error().Err(err).Msg("failed to store oauth state token")
		flash.Set(sessionID, flash.LevelError, "Login failed, please try again")

		return c.Redirect(login.Path)
	}

	return c.Redirect(blueprint.OAuth2.AuthCodeURL(state))
}

// Callback finishes the flow after the provider redirected back: it
// validates the state token, exchanges the code, fetches the identity, and
// lets the resolver decide between login, bind and provisioning.
func (s *Service) Callback(c *fiber.Ctx) error {
	blueprint, ok := s.registry.Get(c.Params("provider"))
	if !ok {
		return notFound(c)
	}

	sessionID := c.Cookies(handler.SessionCookie)

	if errParam := c.Query("error"); errParam != "" {
		desc := c.Query("error_description")
		uri := c.Query("error_uri")

		notice := "The provider denied the login request: " + errParam
		if desc != "" {
			notice += " (" + desc + ")"
		}

		if uri != "" {
			notice += " (" + uri + ")"
		}

		log.Info().Str("provider", blueprint.Provider.Name).Str("error", errParam).
			Str("error_description", desc).Str("error_uri", uri).
			Msg("provider denied the authorization request")
		flash.Set(sessionID, flash.LevelError, notice)

		return c.Redirect(login.Path)
	}

	if !s.consumeState(c.Query("state"), blueprint.Provider.Name) {
		flash.Set(sessionID, flash.LevelError, "Login request expired, please try again")

		return c.Redirect(login.Path)
	}

	code := c.Query("code")
	if code == "" {
		flash.Set(sessionID, flash.LevelError, "Login failed, please try again")

		return c.Redirect(login.Path)
	}

	token, err := blueprint.OAuth2.Exchange(c.UserContext(), code)
	if err != nil {
		log.Error().Err(err).Str("provider", blueprint.Provider.Name).
			Msg("authorization code exchange failed")
		flash.Set(sessionID, flash.LevelError, "Login failed, please try again")

		return c.Redirect(login.Path)
	}

	ident, err := blueprint.FetchIdentity(c.UserContext(), token)
	if err != nil {
		log.Error().Err(err).Str("provider", blueprint.Provider.Name).
			Msg("failed to fetch identity from provider")
		flash.Set(sessionID, flash.LevelError, "Login failed, please try again")

		return c.Redirect(login.Path)
	}

	tokenJSON, err := json.Marshal(token)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode token")
		flash.Set(sessionID, flash.LevelError, "Login failed, please try again")

		return c.Redirect(login.Path)
	}

	var current *models.User
	if data, _, ok := handler.CurrentSession(c); ok {
		current = &data.User
	}

	result, err := auth.Resolve(s.db, blueprint, ident, tokenJSON, current)
	if err != nil {
		if errors.Is(err, auth.ErrUserAccountDisabled) {
			flash.Set(sessionID, flash.LevelError, "This account is deactivated")
		} else {
			flash.Set(sessionID, flash.LevelError, "Login failed, please try again")
		}

		return c.Redirect(login.Path)
	}

	return s.finishCallback(c, blueprint, ident, result, sessionID)
}

// finishCallback turns the resolver's outcome into session state and a redirect.
func (s *Service) finishCallback(c *fiber.Ctx, blueprint *auth.Blueprint,
	ident *auth.Identity, result *auth.Result, sessionID string,
) error {
	switch result.Outcome {
	case auth.OutcomeLoggedIn, auth.OutcomeRegistered:
		newSessionID, err := session.GenerateSessionID()
		if err != nil {
			log.Error().Err(err).Msg("failed to generate session ID")
			flash.Set(sessionID, flash.LevelError, "Login failed, please try again")

			return c.Redirect(login.Path)
		}

		data := &session.Data{User: *result.User}
		data.SetOAuthMarker(blueprint.Provider.Name, ident.ID)

		if err := data.Write(newSessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
			log.Error().Err(err).Msg("failed to write session")
			flash.Set(sessionID, flash.LevelError, "Login failed, please try again")

			return c.Redirect(login.Path)
		}

		s.setSessionCookie(c, newSessionID)

		return c.Redirect("/dashboard")

	case auth.OutcomeLinked:
		data, authedSessionID, ok := handler.CurrentSession(c)
		if ok {
			data.SetOAuthMarker(blueprint.Provider.Name, ident.ID)
			if err := data.Write(authedSessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
				log.Error().Err(err).Msg("failed to update session markers")
			}
		}

		flash.Set(authedSessionID, flash.LevelSuccess,
			"Linked "+blueprint.Provider.Name+" to your account")

		return c.Redirect("/profile")

	default: // auth.OutcomePromptLogin
		if sessionID != "" {
			data := new(session.Data)
			_ = data.Read(sessionID)
			data.SetOAuthMarker(blueprint.Provider.Name, ident.ID)

			if err := data.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
				log.Error().Err(err).Msg("failed to store pending oauth marker")
			}
		}

		flash.Set(sessionID, flash.LevelNotice,
			"Log in with your local account to link it with "+blueprint.Provider.Name)

		return c.Redirect(login.Path)
	}
}

// Unlink removes the current account's binding at the named provider and
// drops the session's OAuth markers for all providers.
func (s *Service) Unlink(c *fiber.Ctx) error {
	blueprint, ok := s.registry.Get(c.Params("provider"))
	if !ok {
		return notFound(c)
	}

	data, sessionID, ok := handler.CurrentSession(c)
	if !ok {
		return c.Redirect(login.Path)
	}

	err := oauthtoken.Delete(s.db, blueprint.Provider.ID, data.User.ID)

	switch {
	case errors.Is(err, oauthtoken.ErrNotLinked):
		flash.Set(sessionID, flash.LevelNotice,
			"Not linked with "+blueprint.Provider.Name)
	case err != nil:
		log.Error().Err(err).Str("provider", blueprint.Provider.Name).
			Msg("failed to unlink oauth identity")
		flash.Set(sessionID, flash.LevelError, "Unlink failed, please try again")
	default:
		data.ClearOAuthMarkers()
		if errWrite := data.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); errWrite != nil {
			log.Error().Err(errWrite).Msg("failed to clear session markers")
		}

		flash.Set(sessionID, flash.LevelSuccess,
			"Unlinked "+blueprint.Provider.Name+" from your account")
	}

	return c.Redirect("/profile")
}

// consumeState validates and invalidates a state token in one step.
func (s *Service) consumeState(state, providerName string) bool {
	if state == "" {
		return false
	}

	stored, err := session.Store.Storage.Get(statePrefix + state)
	if err != nil || len(stored) == 0 {
		return false
	}

	if err := session.Store.Storage.Delete(statePrefix + state); err != nil {
		log.Error().Err(err).Msg("failed to delete oauth state token")
	}

	return string(stored) == providerName
}

// ensureSession makes sure the request carries a session cookie, creating an
// anonymous session when needed. Flash notices and pending markers need one.
func (s *Service) ensureSession(c *fiber.Ctx) (string, error) {
	if sessionID := c.Cookies(handler.SessionCookie); sessionID != "" {
		return sessionID, nil
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return "", err
	}

	if err := new(session.Data).Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		return "", err
	}

	s.setSessionCookie(c, sessionID)

	return sessionID, nil
}

func (s *Service) setSessionCookie(c *fiber.Ctx, sessionID string) {
	cookieSettings := &fiber.Cookie{
		Name:     handler.SessionCookie,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)
}

// notFound answers like a missing route would. API style requests get the
// JSON rendition instead of the plain page.
func notFound(c *fiber.Ctx) error {
	if c.Get("X-Requested-With") == "XMLHttpRequest" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Not Found",
		})
	}

	return c.SendStatus(fiber.StatusNotFound)
}
