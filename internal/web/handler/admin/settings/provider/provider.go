// Package provider provides the admin settings page for OAuth provider
// configuration.
package provider

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/oauthprovider"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/flash"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/handler"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/navigation"
)

const (
	// Path is the path to the provider settings page.
	Path = handler.RootPath + "admin/settings/oauth"

	// TemplateName is the name of the provider settings template.
	TemplateName = "admin/provider"
)

// form is the provider edit form payload. The endpoint URLs are optional for
// providers configured through a discovery document.
type form struct {
	Name             string `form:"name" validate:"required,oneof=github google generic"`
	Active           bool   `form:"active"`
	ClientID         string `form:"client_id" validate:"required_if=Active true"`
	ClientSecret     string `form:"client_secret" validate:"required_if=Active true"`
	Scope            string `form:"scope"`
	BaseURL          string `form:"base_url" validate:"omitempty,url"`
	AuthorizationURL string `form:"authorization_url" validate:"omitempty,url"`
	TokenURL         string `form:"token_url" validate:"omitempty,url"`
	UserinfoURL      string `form:"userinfo_url" validate:"omitempty,url"`
	MetadataURL      string `form:"metadata_url" validate:"omitempty,url"`
	UsernameField    string `form:"username_field"`
	EmailField       string `form:"email_field"`
}

// Service is the provider settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the provider settings handler.
var Handler = Service{}

// Init initializes the provider settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	// register routes, restricted to administrators
	app.Get(Path, s.requireAdmin, s.Get)
	app.Post(Path, s.requireAdmin, s.Post)

	return nil
}

// requireAdmin rejects requests of non-administrator sessions.
func (s *Service) requireAdmin(c *fiber.Ctx) error {
	data, _, ok := handler.CurrentSession(c)
	if !ok {
		return c.Redirect("/login")
	}

	if !data.User.IsAdmin() {
		return c.SendStatus(fiber.StatusForbidden)
	}

	return c.Next()
}

// Get handles the provider settings page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	data, sessionID, _ := handler.CurrentSession(c)

	providers, err := oauthprovider.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load oauth providers")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
	}

	nav := navigation.NewContext("OAuth Providers", "settings", &data.User)

	renderData := fiber.Map{
		"title":     s.cfg.Title,
		"nav":       nav,
		"user":      data.User,
		"providers": providers,
	}

	if msg, ok := flash.Pop(sessionID); ok {
		renderData["flash_level"] = msg.Level
		renderData["flash_text"] = msg.Text
	}

	return c.Render(TemplateName, renderData, handler.BaseLayout)
}

// Post handles the provider settings form submission. Changes to the set of
// active providers take effect after a restart, when the registry is rebuilt.
func (s *Service) Post(c *fiber.Ctx) error {
	_, sessionID, _ := handler.CurrentSession(c)

	payload := new(form)
	if err := c.BodyParser(payload); err != nil {
		log.Error().Err(err).Msg("failed to parse provider settings form")
		flash.Set(sessionID, flash.LevelError, "Invalid form data")

		return c.Redirect(Path)
	}

	if err := s.validator.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		errors.As(err, &validationErrors)

		message := "Invalid form data"
		if len(validationErrors) > 0 {
			message = "Field '" + validationErrors[0].Field() +
				"' failed validation tag '" + validationErrors[0].Tag() + "'"
		}

		flash.Set(sessionID, flash.LevelError, message)

		return c.Redirect(Path)
	}

	provider, err := oauthprovider.Get(s.db, payload.Name)
	if err != nil {
		log.Error().Err(err).Str("provider", payload.Name).Msg("failed to load provider")
		flash.Set(sessionID, flash.LevelError, "Unknown provider")

		return c.Redirect(Path)
	}

	provider.Active = payload.Active
	provider.ClientID = payload.ClientID
	provider.ClientSecret = payload.ClientSecret
	provider.Scope = payload.Scope
	provider.BaseURL = payload.BaseURL
	provider.AuthorizationURL = payload.AuthorizationURL
	provider.TokenURL = payload.TokenURL
	provider.UserinfoURL = payload.UserinfoURL
	provider.MetadataURL = payload.MetadataURL
	provider.UsernameField = payload.UsernameField
	provider.EmailField = payload.EmailField

	if err := oauthprovider.Save(s.db, provider); err != nil {
		log.Error().Err(err).Str("provider", payload.Name).Msg("failed to save provider")
		flash.Set(sessionID, flash.LevelError, "Failed to save settings")

		return c.Redirect(Path)
	}

	flash.Set(sessionID, flash.LevelSuccess, "Provider settings saved, restart to apply")

	return c.Redirect(Path)
}
