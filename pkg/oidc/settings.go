package oidc

import "fmt"

// Settings is the persistent relying-party state handed to the identity
// manager. It is enough to reconstruct a handle without re-registering
// with the provider.
type Settings struct {
	Issuer                string `json:"issuer"`
	ClientID              string `json:"client_id"`
	ClientSecret          string `json:"client_secret,omitempty"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
}

// Validate checks that the settings can drive a login flow.
func (s *Settings) Validate() error {
	if s.Issuer == "" {
		return fmt.Errorf("%w: missing issuer", ErrInvalidSettings)
	}
	if s.ClientID == "" {
		return fmt.Errorf("%w: missing client_id", ErrInvalidSettings)
	}
	if s.AuthorizationEndpoint == "" {
		return fmt.Errorf("%w: missing authorization_endpoint", ErrInvalidSettings)
	}
	if s.JWKSURI == "" {
		return fmt.Errorf("%w: missing jwks_uri", ErrInvalidSettings)
	}
	if s.RedirectURI == "" {
		return fmt.Errorf("%w: missing redirect_uri", ErrInvalidSettings)
	}
	return nil
}
