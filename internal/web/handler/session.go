package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/session"
)

// CurrentSession returns the session data and id the auth middleware stored
// for an authenticated request. ok is false for anonymous requests.
func CurrentSession(c *fiber.Ctx) (data *session.Data, sessionID string, ok bool) {
	data, okData := c.Locals(LocalsSession).(*session.Data)
	sessionID, okID := c.Locals(LocalsSessionID).(string)

	if !okData || !okID || data.User.ID == 0 {
		return nil, "", false
	}

	return data, sessionID, true
}
