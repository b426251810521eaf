// Package dashboard provides the library landing page.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/flash"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/handler"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard"
)

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)

	return nil
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	data, sessionID, ok := handler.CurrentSession(c)
	if !ok {
		return c.Redirect("/login")
	}

	nav := navigation.NewContext("Library", "dashboard", &data.User)

	renderData := fiber.Map{
		"title": s.cfg.Title,
		"nav":   nav,
		"user":  data.User,
		"view":  c.Query("view", "recent"),
	}

	if msg, ok := flash.Pop(sessionID); ok {
		renderData["flash_level"] = msg.Level
		renderData["flash_text"] = msg.Text
	}

	return c.Render(TemplateName, renderData, handler.BaseLayout)
}
