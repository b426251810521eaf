package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// SessionCookie is the name of the session cookie.
	SessionCookie = "session"

	// LocalsSession is the locals key holding the authenticated session data.
	LocalsSession = "sessionData"

	// LocalsSessionID is the locals key holding the authenticated session id.
	LocalsSessionID = "sessionID"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
