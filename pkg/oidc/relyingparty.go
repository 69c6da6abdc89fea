package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"sync"

	"github.com/MicahParks/keyfunc/v3"
	"golang.org/x/oauth2"

	"github.com/jeremyhahn/go-oidc-login/pkg/session"
)

// relyingParty is a registered implicit-flow client for one identity
// provider. It implements session.RelyingParty.
type relyingParty struct {
	settings Settings

	jwksMu sync.Mutex
	jwks   keyfunc.Keyfunc
}

func (rp *relyingParty) Issuer() string {
	return rp.settings.Issuer
}

func (rp *relyingParty) ClientID() string {
	return rp.settings.ClientID
}

// Settings serializes the handle's persistent state for the identity
// manager.
func (rp *relyingParty) Settings() json.RawMessage {
	raw, err := json.Marshal(rp.settings)
	if err != nil {
		// Settings contains only plain string fields.
		return nil
	}
	return raw
}

// authRequest carries the per-request state and nonce correlating an
// authorization request with its response.
type authRequest struct {
	url   string
	state string
	nonce string
}

// URL returns the authorization URL the login flow starts from.
func (r *authRequest) URL() string {
	return r.url
}

// CreateRequest builds an implicit-flow authorization URL bound to the
// registered redirect URI, with fresh state and nonce parameters.
func (rp *relyingParty) CreateRequest(ctx context.Context) (session.AuthRequest, error) {
	state, err := randomToken()
	if err != nil {
		return nil, err
	}
	nonce, err := randomToken()
	if err != nil {
		return nil, err
	}

	cfg := &oauth2.Config{
		ClientID:    rp.settings.ClientID,
		RedirectURL: rp.settings.RedirectURI,
		Scopes:      strings.Fields(rp.settings.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL: rp.settings.AuthorizationEndpoint,
		},
	}

	authURL := cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "id_token token"),
		oauth2.SetAuthURLParam("nonce", nonce),
	)

	return &authRequest{url: authURL, state: state, nonce: nonce}, nil
}

// randomToken returns 32 bytes of cryptographic randomness, base64url
// encoded without padding.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// keyfuncFor lazily initializes the JWKS key set for ID token validation.
func (rp *relyingParty) keyfuncFor(ctx context.Context) (keyfunc.Keyfunc, error) {
	rp.jwksMu.Lock()
	defer rp.jwksMu.Unlock()

	if rp.jwks != nil {
		return rp.jwks, nil
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{rp.settings.JWKSURI})
	if err != nil {
		return nil, err
	}
	rp.jwks = jwks
	return jwks, nil
}
