package config

// Login types selectable via Auth.LoginType.
const (
	// LoginTypeLocal authenticates against the local user table.
	LoginTypeLocal = "local"
	// LoginTypeOAuth makes the configured OAuth providers the primary login
	// method. The /link/<provider> endpoints answer whenever the provider
	// row is active, regardless of the primary login method.
	LoginTypeOAuth = "oauth"
	// LoginTypeLDAP authenticates against an LDAP directory.
	LoginTypeLDAP = "ldap"
)

// Auth holds the authentication configuration.
type Auth struct {
	// LoginType selects the active authentication mode (local, oauth, ldap).
	LoginType string
	// LocalDB configures local database authentication.
	LocalDB LocalDBAuth
	// LDAP configures LDAP directory authentication.
	LDAP LDAPAuth
}

// LocalDBAuth holds local database authentication settings.
type LocalDBAuth struct {
	Enabled bool
}

// LDAPAuth holds LDAP authentication settings.
type LDAPAuth struct {
	Enabled bool
	// Host is the LDAP server hostname.
	Host string
	// Port is the LDAP server port (389 for LDAP, 636 for LDAPS).
	Port int
	// UseTLS enables LDAPS.
	UseTLS bool
	// SkipTLSVerify disables certificate verification (testing only).
	SkipTLSVerify bool
	// BindDN is the DN used to bind for searching (empty for anonymous).
	BindDN string
	// BindPassword is the password for BindDN.
	BindPassword string
	// BaseDN is the search base for user entries.
	BaseDN string
	// UserFilter is the search filter, %s is replaced by the username.
	UserFilter string
	// UsernameAttr is the attribute holding the login name (default uid).
	UsernameAttr string
	// EmailAttr is the attribute holding the mail address (default mail).
	EmailAttr string
}
