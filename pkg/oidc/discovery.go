package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// discoveryDocument is the subset of the OpenID Provider metadata this
// package needs.
type discoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
	RegistrationEndpoint  string `json:"registration_endpoint"`
}

// Validate checks the fields the implicit flow depends on.
func (d *discoveryDocument) Validate() error {
	if d.Issuer == "" {
		return fmt.Errorf("%w: missing issuer", ErrInvalidDiscovery)
	}
	if d.AuthorizationEndpoint == "" {
		return fmt.Errorf("%w: missing authorization_endpoint", ErrInvalidDiscovery)
	}
	if d.JWKSURI == "" {
		return fmt.Errorf("%w: missing jwks_uri", ErrInvalidDiscovery)
	}
	return nil
}

// fetchDiscovery retrieves the provider metadata from the standard
// well-known location under the issuer.
func fetchDiscovery(ctx context.Context, client *http.Client, issuer string) (*discoveryDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL(issuer), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create discovery request: %v", ErrDiscoveryFailed, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch discovery document: %v", ErrDiscoveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: unexpected status %d: %s", ErrDiscoveryFailed, resp.StatusCode, string(body))
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse discovery document: %v", ErrDiscoveryFailed, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// discoveryURL constructs the standard OIDC discovery URL from an issuer.
func discoveryURL(issuer string) string {
	issuer = strings.TrimSpace(issuer)
	issuer = strings.TrimSuffix(issuer, "/")
	return issuer + "/.well-known/openid-configuration"
}
