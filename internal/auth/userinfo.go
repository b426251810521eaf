package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

// Identity is the normalized remote identity extracted from a provider's
// claims. ID is the provider-assigned stable user id; Username and Email are
// only meaningful for providers that auto-provision accounts.
type Identity struct {
	// ID is the provider-assigned stable user identifier.
	ID string
	// Username is the login name claimed by the provider.
	Username string
	// Email is the email address claimed by the provider.
	Email string
	// Admin indicates the provider claims administrative group membership.
	Admin bool
}

// FetchIdentity queries the provider's userinfo endpoint with the freshly
// exchanged token and extracts the normalized identity. For providers with a
// working ID token verifier the administrative claim is only honored when it
// appears in the verified ID token; otherwise an unverified grant is logged.
func (b *Blueprint) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	claims, err := b.fetchUserinfo(ctx, token)
	if err != nil {
		return nil, err
	}

	identity, err := b.extractIdentity(claims)
	if err != nil {
		return nil, err
	}

	if identity.Admin {
		identity.Admin = b.confirmAdminClaim(ctx, token)
	}

	return identity, nil
}

// fetchUserinfo performs the authenticated userinfo request and decodes the
// claim set. Numbers are kept as json.Number so numeric user ids survive
// without float rounding.
func (b *Blueprint) fetchUserinfo(ctx context.Context, token *oauth2.Token) (map[string]any, error) {
	resp, err := b.OAuth2.Client(ctx, token).Get(b.Provider.UserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserinfoFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUserinfoFailed, resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var claims map[string]any
	if err := decoder.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserinfoFailed, err)
	}

	return claims, nil
}

// extractIdentity maps the provider's claim names onto the normalized
// identity. The stable id is taken from "sub", then "id", then the
// configured username claim.
func (b *Blueprint) extractIdentity(claims map[string]any) (*Identity, error) {
	usernameField := b.Provider.UsernameField
	if usernameField == "" {
		usernameField = "username"
	}

	emailField := b.Provider.EmailField
	if emailField == "" {
		emailField = "email"
	}

	identity := &Identity{
		Email: claimString(claims, emailField),
		Admin: adminClaimed(claims),
	}

	switch b.Provider.Name {
	case models.ProviderGitHub:
		identity.Username = claimString(claims, "login")
	default:
		identity.Username = claimString(claims, usernameField)
	}

	for _, field := range []string{"sub", "id", usernameField} {
		if v := claimString(claims, field); v != "" {
			identity.ID = v

			break
		}
	}

	if identity.ID == "" {
		return nil, ErrNoStableID
	}

	return identity, nil
}

// confirmAdminClaim decides whether a claimed administrative membership is
// honored. With a verifier present the claim must also appear in the
// verified ID token; without one the grant goes through on the userinfo
// response alone, which is logged since that response is only
// bearer-authenticated.
func (b *Blueprint) confirmAdminClaim(ctx context.Context, token *oauth2.Token) bool {
	if b.verifier == nil {
		log.Warn().Str("provider", b.Provider.Name).
			Msg("granting administrative role from unverified userinfo claim")

		return true
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		log.Warn().Str("provider", b.Provider.Name).
			Msg("no id token in token response, refusing administrative claim")

		return false
	}

	idToken, err := b.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Warn().Err(err).Str("provider", b.Provider.Name).
			Msg("id token verification failed, refusing administrative claim")

		return false
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		log.Warn().Err(err).Str("provider", b.Provider.Name).
			Msg("failed to parse id token claims, refusing administrative claim")

		return false
	}

	return adminClaimed(claims)
}

// adminClaimed reports whether the claim set asserts administrative group
// membership: an "admin" flag, or "admin" in a "groups" list.
func adminClaimed(claims map[string]any) bool {
	if flag, ok := claims["admin"].(bool); ok && flag {
		return true
	}

	groups, ok := claims["groups"].([]any)
	if !ok {
		return false
	}

	for _, group := range groups {
		if name, ok := group.(string); ok && name == "admin" {
			return true
		}
	}

	return false
}

// claimString returns the named claim as a string, converting numeric claims
// on the way.
func claimString(claims map[string]any, name string) string {
	switch v := claims[name].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
