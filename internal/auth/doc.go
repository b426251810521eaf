// Package auth provides authentication functionality for the application.
//
// Three authentication sources are supported:
//   - Local database authentication with Argon2id password hashing
//   - LDAP/Active Directory authentication
//   - OAuth2 / OpenID Connect login and account linking (GitHub, Google,
//     and a configurable generic provider)
//
// # OAuth2 Account Linking
//
// The Registry builds one Blueprint per active provider row: the OAuth2
// client configuration, the userinfo endpoint, and the claim mapping used to
// extract a normalized Identity. Providers carrying a metadata URL are
// refreshed from their OpenID Connect discovery document at startup.
//
// After the authorization-code exchange, the callback handler fetches the
// user's identity and hands it to Resolve, the single decision procedure for
// all providers:
//   - a bound identity logs its account in
//   - an unbound identity binds to the already authenticated session
//   - otherwise the generic provider may auto-provision a local account,
//     while github/google prompt for a local login first
//
// Every resolver run executes as one database transaction, so a persistence
// failure rolls back rather than leaving a half-written binding.
//
// # Example
//
//	registry, err := auth.NewRegistry(ctx, db, cfg.Webserver.URL)
//	bp, ok := registry.Get("github")
//	token, err := bp.OAuth2.Exchange(ctx, code)
//	ident, err := bp.FetchIdentity(ctx, token)
//	result, err := auth.Resolve(db, bp, ident, tokenJSON, currentUser)
package auth
