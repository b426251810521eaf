package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/oauthprovider"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

// discoveryTimeout bounds the synchronous metadata fetch at startup.
const discoveryTimeout = 10 * time.Second

// Metadata is the subset of an OpenID Connect discovery document the
// application consumes.
type Metadata struct {
	// Issuer is the provider's issuer identifier URL.
	Issuer string `json:"issuer"`
	// AuthorizationEndpoint is the OAuth2 authorization endpoint.
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	// TokenEndpoint is the OAuth2 token endpoint.
	TokenEndpoint string `json:"token_endpoint"`
	// UserinfoEndpoint is the OpenID Connect userinfo endpoint.
	UserinfoEndpoint string `json:"userinfo_endpoint"`
}

// FetchMetadata retrieves and decodes the discovery document at url.
func FetchMetadata(ctx context.Context, url string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build discovery request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discovery document: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery document fetch returned status %d", resp.StatusCode)
	}

	var metadata Metadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document: %w", err)
	}

	return &metadata, nil
}

// ApplyDiscovery refreshes the provider's endpoint URLs from its discovery
// document and persists the row. Empty discovery fields leave the prior
// values intact.
func ApplyDiscovery(ctx context.Context, db *gorm.DB, provider *models.OAuthProvider) error {
	metadata, err := FetchMetadata(ctx, provider.MetadataURL)
	if err != nil {
		return err
	}

	if metadata.Issuer != "" {
		provider.BaseURL = metadata.Issuer
	}
	if metadata.AuthorizationEndpoint != "" {
		provider.AuthorizationURL = metadata.AuthorizationEndpoint
	}
	if metadata.TokenEndpoint != "" {
		provider.TokenURL = metadata.TokenEndpoint
	}
	if metadata.UserinfoEndpoint != "" {
		provider.UserinfoURL = metadata.UserinfoEndpoint
	}

	return oauthprovider.Save(db, provider)
}
