package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/handler"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/handler/login"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/session"
)

// publicPrefixes are reachable without an authenticated session. The OAuth
// paths stay public because they carry the login flow itself; their handlers
// decide per provider what an anonymous request may do.
var publicPrefixes = []string{
	"/static",
	"/login",
	"/link/",
	"/logout",
}

// AuthMiddleware is a Fiber middleware that checks for user authentication.
// A valid session's data is stored in the request locals for the handlers.
func AuthMiddleware(c *fiber.Ctx) error {
	var sessDataValid bool

	sessionID := c.Cookies(handler.SessionCookie)

	sessData := new(session.Data)
	if sessionID != "" {
		_ = sessData.Read(sessionID)
	}

	// valid data in session
	if sessData.User.ID > 0 {
		sessDataValid = true
		c.Locals(handler.LocalsSession, sessData)
		c.Locals(handler.LocalsSessionID, sessionID)
	}

	if sessDataValid && c.Path() == login.Path {
		return c.Redirect("/dashboard")
	}

	if !sessDataValid && !isPublic(c) {
		return c.Redirect(login.Path)
	}

	return c.Next()
}

func isPublic(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())

	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(originalURL, prefix) {
			return true
		}
	}

	return false
}
