package models

import "time"

// Well known provider names. The github and google rows are created at
// startup (inactive) so an administrator only has to fill in credentials.
const (
	ProviderGitHub  = "github"
	ProviderGoogle  = "google"
	ProviderGeneric = "generic"
)

// OAuthProvider holds the configuration of a single OAuth2 / OpenID Connect
// identity provider. A provider only participates in login once it is marked
// active and carries client credentials.
type OAuthProvider struct {
	// ID is the unique identifier for the provider.
	ID uint64 `gorm:"primaryKey"`
	// Name is the short provider name used in URLs (github, google, generic).
	Name string `gorm:"unique;size:50;not null"`
	// Active indicates whether the provider participates in login.
	Active bool
	// ClientID is the OAuth2 client identifier issued by the provider.
	ClientID string `gorm:"size:255"`
	// ClientSecret is the OAuth2 client secret issued by the provider.
	ClientSecret string `gorm:"size:255"`
	// Scope is the space separated OAuth2 scope string requested at authorization.
	Scope string `gorm:"size:255"`
	// BaseURL is the provider's base URL (generic providers only).
	BaseURL string `gorm:"size:255"`
	// AuthorizationURL is the OAuth2 authorization endpoint.
	AuthorizationURL string `gorm:"size:255"`
	// TokenURL is the OAuth2 token endpoint.
	TokenURL string `gorm:"size:255"`
	// UserinfoURL is the endpoint queried for the user's identity claims.
	UserinfoURL string `gorm:"size:255"`
	// MetadataURL is the OpenID Connect discovery document URL. When set, the
	// endpoint URLs above are refreshed from it at startup.
	MetadataURL string `gorm:"size:255"`
	// UsernameField is the userinfo claim carrying the username (generic providers).
	UsernameField string `gorm:"size:100"`
	// EmailField is the userinfo claim carrying the email address (generic providers).
	EmailField string `gorm:"size:100"`
	// CreatedAt is the timestamp when the provider was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the provider was last updated (managed by GORM).
	UpdatedAt time.Time
}

// Configured reports whether the provider carries client credentials.
func (p *OAuthProvider) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}
