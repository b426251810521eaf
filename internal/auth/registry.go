package auth

import (
	"context"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/oauthprovider"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

// Blueprint carries everything needed to run the authorization-code flow for
// one provider: the OAuth2 client configuration, the provider row, and an
// optional ID token verifier for discovery-configured providers.
type Blueprint struct {
	// Provider is the underlying provider configuration row.
	Provider models.OAuthProvider
	// OAuth2 is the client configuration used for the authorization-code flow.
	OAuth2 oauth2.Config
	// AutoProvision indicates whether unknown identities may create accounts.
	AutoProvision bool

	verifier *oidc.IDTokenVerifier
}

// Registry holds the blueprints of all providers participating in login.
// It is built once at startup and read-only afterwards, so concurrent reads
// from request handlers need no locking.
type Registry struct {
	byName map[string]*Blueprint
	order  []string
}

// NewRegistry loads the active provider rows and builds one blueprint per
// provider. Providers carrying a metadata URL are refreshed from their
// discovery document first; a failed fetch is logged and leaves the stored
// endpoint URLs intact. Providers without usable endpoints are skipped.
func NewRegistry(ctx context.Context, db *gorm.DB, baseURL string) (*Registry, error) {
	providers, err := oauthprovider.GetActive(db)
	if err != nil {
		return nil, err
	}

	registry := &Registry{byName: make(map[string]*Blueprint)}

	for i := range providers {
		provider := providers[i]

		if provider.MetadataURL != "" {
			if err := ApplyDiscovery(ctx, db, &provider); err != nil {
				log.Warn().Err(err).Str("provider", provider.Name).
					Msg("metadata discovery failed, keeping stored endpoint urls")
			}
		}

		if provider.AuthorizationURL == "" || provider.TokenURL == "" {
			log.Warn().Str("provider", provider.Name).
				Msg("provider misses endpoint urls, skipping")

			continue
		}

		blueprint := &Blueprint{
			Provider: provider,
			OAuth2: oauth2.Config{
				ClientID:     provider.ClientID,
				ClientSecret: provider.ClientSecret,
				RedirectURL:  redirectURL(baseURL, provider.Name),
				Endpoint: oauth2.Endpoint{
					AuthURL:  provider.AuthorizationURL,
					TokenURL: provider.TokenURL,
				},
				Scopes: strings.Fields(provider.Scope),
			},
			AutoProvision: provider.Name == models.ProviderGeneric,
		}

		blueprint.verifier = newVerifier(ctx, &provider)

		registry.byName[provider.Name] = blueprint
		registry.order = append(registry.order, provider.Name)
	}

	return registry, nil
}

// Get returns the blueprint for the named provider.
func (r *Registry) Get(name string) (*Blueprint, bool) {
	blueprint, ok := r.byName[name]

	return blueprint, ok
}

// Blueprints returns all registered blueprints in stable name order.
func (r *Registry) Blueprints() []*Blueprint {
	out := make([]*Blueprint, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}

	return out
}

// redirectURL builds the provider's callback URL below the application base URL.
func redirectURL(baseURL, providerName string) string {
	return strings.TrimSuffix(baseURL, "/") + "/login/" + providerName + "/authorized"
}

// newVerifier builds an ID token verifier for discovery-configured providers.
// Identity claims of such providers are only trusted when carried in a
// verified ID token. Returns nil when the provider has no issuer to verify
// against; callers treat claims from those providers as unverified.
func newVerifier(ctx context.Context, provider *models.OAuthProvider) *oidc.IDTokenVerifier {
	if provider.BaseURL == "" || provider.MetadataURL == "" {
		return nil
	}

	oidcProvider, err := oidc.NewProvider(ctx, provider.BaseURL)
	if err != nil {
		log.Warn().Err(err).Str("provider", provider.Name).
			Msg("failed to initialize id token verifier, id token claims will not be trusted")

		return nil
	}

	return oidcProvider.Verifier(&oidc.Config{ClientID: provider.ClientID})
}
