// Package login provides the login page and the local and LDAP login flows.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/auth"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/oauthtoken"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/flash"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/handler"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the name of the login template.
	TemplateName = "login"
)

// form is the login form payload.
type form struct {
	Name     string `form:"name"`
	Password string `form:"password"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	registry *auth.Registry
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, registry *auth.Registry) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.registry = registry

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	data := s.renderData()

	if msg, ok := flash.Pop(c.Cookies(handler.SessionCookie)); ok {
		data["flash_level"] = msg.Level
		data["flash_text"] = msg.Text
	}

	return c.Render(TemplateName, data)
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	payload := new(form)
	if err := c.BodyParser(payload); err != nil {
		return err
	}

	account, err := s.authenticate(payload.Name, payload.Password)
	if err != nil {
		log.Info().Str("name", payload.Name).Err(err).Msg("login attempt failed")

		return s.renderError(c, "Invalid username or password")
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return s.renderError(c, "Internal server error")
	}

	userSession := &session.Data{
		User: *account,
	}

	// An anonymous session may carry OAuth markers from a callback that
	// found no bound account. Those identities now bind to the freshly
	// authenticated user.
	s.bindPendingIdentities(c.Cookies(handler.SessionCookie), account, userSession)

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return s.renderError(c, "Internal server error")
	}

	// set login cookie
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

	return c.Redirect("/dashboard")
}

// authenticate runs the configured login backend.
func (s *Service) authenticate(name, password string) (*models.User, error) {
	if s.cfg.Auth.LoginType == config.LoginTypeLDAP && s.cfg.Auth.LDAP.Enabled {
		provider, err := auth.NewLDAPProvider(s.cfg.Auth.LDAP, s.db)
		if err != nil {
			return nil, err
		}

		return provider.Authenticate(name, password)
	}

	return auth.NewLocalProvider(s.db).Authenticate(name, password)
}

// bindPendingIdentities binds the unbound identities an anonymous session's
// OAuth markers point at and carries the markers over into the new session.
func (s *Service) bindPendingIdentities(oldSessionID string, account *models.User, next *session.Data) {
	if oldSessionID == "" || s.registry == nil {
		return
	}

	previous := new(session.Data)
	if err := previous.Read(oldSessionID); err != nil || len(previous.OAuth) == 0 {
		return
	}

	for providerName, providerUserID := range previous.OAuth {
		blueprint, ok := s.registry.Get(providerName)
		if !ok {
			continue
		}

		identity, err := oauthtoken.Get(s.db, blueprint.Provider.ID, providerUserID)
		if err != nil {
			log.Warn().Err(err).Str("provider", providerName).
				Msg("pending oauth identity vanished before binding")

			continue
		}

		if !identity.Bound() {
			if err := oauthtoken.Bind(s.db, identity.ID, account.ID); err != nil {
				log.Error().Err(err).Str("provider", providerName).
					Msg("failed to bind pending oauth identity")

				continue
			}

			log.Info().Str("provider", providerName).Str("user", account.Name).
				Msg("bound pending oauth identity after local login")
		}

		next.SetOAuthMarker(providerName, providerUserID)
	}
}

// renderData collects the static state of the login page.
func (s *Service) renderData() fiber.Map {
	providers := make([]fiber.Map, 0)
	if s.registry != nil {
		for _, blueprint := range s.registry.Blueprints() {
			providers = append(providers, fiber.Map{
				"name": blueprint.Provider.Name,
				"url":  "/link/" + blueprint.Provider.Name,
			})
		}
	}

	return fiber.Map{
		"title":            s.cfg.Title,
		"local_db_enabled": s.cfg.Auth.LoginType == config.LoginTypeLocal,
		"ldap_enabled":     s.cfg.Auth.LoginType == config.LoginTypeLDAP,
		"oauth_providers":  providers,
	}
}

func (s *Service) renderError(c *fiber.Ctx, message string) error {
	data := s.renderData()
	data["error"] = message

	return c.Render(TemplateName, data)
}
