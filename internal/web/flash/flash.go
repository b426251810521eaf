// Package flash provides one-shot user notices that survive a redirect.
// Notices live in the session storage next to the session data and are
// consumed on first read.
package flash

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/session"
)

const (
	keyPrefix = "flash:"
	expiry    = 5 * time.Minute
)

// Levels used by the templates for styling.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelNotice  = "notice"
)

// Message is a single user notice.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Set stores a notice for the session. A failure only loses the notice, so
// it is logged and swallowed.
func Set(sessionID, level, text string) {
	if sessionID == "" {
		return
	}

	out, err := json.Marshal(Message{Level: level, Text: text})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal flash message")

		return
	}

	if err := session.Store.Storage.Set(keyPrefix+sessionID, out, expiry); err != nil {
		log.Error().Err(err).Msg("failed to store flash message")
	}
}

// Pop retrieves and deletes the notice stored for the session. The second
// return value reports whether a notice existed.
func Pop(sessionID string) (Message, bool) {
	var msg Message

	if sessionID == "" {
		return msg, false
	}

	raw, err := session.Store.Storage.Get(keyPrefix + sessionID)
	if err != nil || len(raw) == 0 {
		return msg, false
	}

	if err := session.Store.Storage.Delete(keyPrefix + sessionID); err != nil {
		log.Error().Err(err).Msg("failed to delete flash message")
	}

	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, false
	}

	return msg, true
}
