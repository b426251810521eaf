// Package profile provides the user profile page with linked provider
// management and password changes.
package profile

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
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/navigation"
)

const (
	// Path is the path to the profile page.
	Path = handler.RootPath + "profile"

	// TemplateName is the name of the profile template.
	TemplateName = "profile"
)

// passwordForm is the change password form payload.
type passwordForm struct {
	OldPassword string `form:"old_password"`
	NewPassword string `form:"new_password"`
}

// Service is the profile handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	registry *auth.Registry
}

// Handler is the profile handler.
var Handler = Service{}

// Init initializes the profile handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, registry *auth.Registry) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.registry = registry

	// register routes
	app.Get(Path, s.Get)
	app.Post(Path+"/password", s.ChangePassword)

	return nil
}

// Get handles the profile page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	data, sessionID, ok := handler.CurrentSession(c)
	if !ok {
		return c.Redirect("/login")
	}

	linked, err := oauthtoken.ListProviderIDs(s.db, data.User.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list linked providers")
	}

	linkedSet := make(map[uint64]bool, len(linked))
	for _, id := range linked {
		linkedSet[id] = true
	}

	providers := make([]fiber.Map, 0)
	if s.registry != nil {
		for _, blueprint := range s.registry.Blueprints() {
			providers = append(providers, fiber.Map{
				"name":   blueprint.Provider.Name,
				"linked": linkedSet[blueprint.Provider.ID],
				"link":   "/link/" + blueprint.Provider.Name,
				"unlink": "/unlink/" + blueprint.Provider.Name,
			})
		}
	}

	nav := navigation.NewContext("Profile", "profile", &data.User)

	renderData := fiber.Map{
		"title":     s.cfg.Title,
		"nav":       nav,
		"user":      data.User,
		"providers": providers,
		"is_local":  data.User.AuthSource == models.AuthSourceLocal,
	}

	if msg, ok := flash.Pop(sessionID); ok {
		renderData["flash_level"] = msg.Level
		renderData["flash_text"] = msg.Text
	}

	return c.Render(TemplateName, renderData, handler.BaseLayout)
}

// ChangePassword handles the change password form for local accounts.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	data, sessionID, ok := handler.CurrentSession(c)
	if !ok {
		return c.Redirect("/login")
	}

	if data.User.AuthSource != models.AuthSourceLocal {
		flash.Set(sessionID, flash.LevelError, "Passwords are managed by your identity provider")

		return c.Redirect(Path)
	}

	payload := new(passwordForm)
	if err := c.BodyParser(payload); err != nil {
		return err
	}

	if payload.NewPassword == "" {
		flash.Set(sessionID, flash.LevelError, "New password must not be empty")

		return c.Redirect(Path)
	}

	err := auth.NewLocalProvider(s.db).ChangePassword(data.User.ID, payload.OldPassword, payload.NewPassword)

	switch {
	case errors.Is(err, auth.ErrInvalidOldPassword):
		flash.Set(sessionID, flash.LevelError, "Old password does not match")
	case err != nil:
		log.Error().Err(err).Msg("failed to change password")
		flash.Set(sessionID, flash.LevelError, "Password change failed, please try again")
	default:
		flash.Set(sessionID, flash.LevelSuccess, "Password changed")
	}

	return c.Redirect(Path)
}
