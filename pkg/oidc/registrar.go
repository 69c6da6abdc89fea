package oidc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jeremyhahn/go-oidc-login/pkg/session"
)

// DefaultRedirectURI is the fixed redirect URI registered for every
// relying party. It anchors the implicit flow but is never served: the
// login completes by scraping the provider's HTML, so the redirect only
// has to be a syntactically valid registered URI.
const DefaultRedirectURI = "https://relying-party.invalid/callback"

// DefaultScope is the scope requested during registration and authorization.
const DefaultScope = "openid profile"

// RegistrarConfig holds configuration for a Registrar.
type RegistrarConfig struct {
	// ClientName is sent as client_name during dynamic registration.
	ClientName string

	// RedirectURI overrides DefaultRedirectURI.
	RedirectURI string

	// Scope overrides DefaultScope.
	Scope string

	// Timeout is the HTTP timeout for discovery and registration requests.
	Timeout time.Duration

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
}

// Registrar performs OIDC discovery and RFC 7591 dynamic client
// registration, producing relying-party handles for the implicit flow.
// It implements session.Registrar.
type Registrar struct {
	config     RegistrarConfig
	httpClient *http.Client
}

// NewRegistrar creates a Registrar with the given configuration.
func NewRegistrar(config RegistrarConfig) *Registrar {
	if config.ClientName == "" {
		config.ClientName = "go-oidc-login"
	}
	if config.RedirectURI == "" {
		config.RedirectURI = DefaultRedirectURI
	}
	if config.Scope == "" {
		config.Scope = DefaultScope
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Registrar{
		config:     config,
		httpClient: httpClient,
	}
}

// registrationRequest is the RFC 7591 client metadata for the implicit flow.
type registrationRequest struct {
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	Scope                   string   `json:"scope"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

// registrationResponse is the subset of the registration response we keep.
type registrationResponse struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Register performs discovery and dynamic client registration with the
// issuer, returning a relying-party handle for the implicit flow.
func (r *Registrar) Register(ctx context.Context, issuer string) (session.RelyingParty, error) {
	doc, err := fetchDiscovery(ctx, r.httpClient, issuer)
	if err != nil {
		return nil, err
	}

	if doc.RegistrationEndpoint == "" {
		return nil, fmt.Errorf("%w: issuer does not support dynamic registration", ErrRegistrationFailed)
	}

	payload, err := json.Marshal(registrationRequest{
		ClientName:    r.config.ClientName,
		RedirectURIs:  []string{r.config.RedirectURI},
		GrantTypes:    []string{"implicit"},
		ResponseTypes: []string{"id_token token"},
		Scope:         r.config.Scope,
		// Tokens arrive in the redirect fragment; the token endpoint is
		// never used, so the client registers as public.
		TokenEndpointAuthMethod: "none",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, doc.RegistrationEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRegistrationFailed, resp.StatusCode, string(body))
	}

	var reg registrationResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrRegistrationFailed, err)
	}

	if reg.ClientID == "" {
		return nil, fmt.Errorf("%w: no client_id in response", ErrRegistrationFailed)
	}

	settings := Settings{
		Issuer:                doc.Issuer,
		ClientID:              reg.ClientID,
		ClientSecret:          reg.ClientSecret,
		AuthorizationEndpoint: doc.AuthorizationEndpoint,
		JWKSURI:               doc.JWKSURI,
		RedirectURI:           r.config.RedirectURI,
		Scope:                 r.config.Scope,
	}

	return &relyingParty{settings: settings}, nil
}

// FromSettings reconstructs a relying-party handle from persisted settings
// without any network activity.
func (r *Registrar) FromSettings(raw json.RawMessage) (session.RelyingParty, error) {
	var settings Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &relyingParty{settings: settings}, nil
}
