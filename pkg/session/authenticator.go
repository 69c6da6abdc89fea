package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jeremyhahn/go-oidc-login/pkg/weblogin"
)

// Config contains the complete session orchestrator configuration.
type Config struct {
	// Registrar obtains relying-party handles (required).
	Registrar Registrar

	// Identity stores provider settings and sessions. Defaults to an
	// in-memory manager.
	Identity IdentityManager

	// Bridge scrapes the provider's login form. Defaults to a
	// weblogin.Bridge over the default fetcher.
	Bridge LoginBridge

	// Submitter posts credentials and walks the redirect chain. Defaults
	// to a weblogin.Submitter over the default fetcher.
	Submitter CredentialSubmitter

	// Tokens mints proof-of-possession tokens. Optional; required only
	// for CreateToken.
	Tokens TokenIssuer

	// Timeout is the HTTP timeout for each login hop.
	Timeout time.Duration

	// TLSConfig allows custom TLS configuration for the default fetcher.
	TLSConfig *tls.Config

	// InsecureSkipVerify disables TLS certificate verification (not recommended).
	InsecureSkipVerify bool
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfiguration)
	}

	if c.Registrar == nil {
		return fmt.Errorf("%w: registrar is required", ErrInvalidConfiguration)
	}

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}

	if c.Identity == nil {
		c.Identity = NewMemoryIdentityManager()
	}

	if c.Bridge == nil || c.Submitter == nil {
		fetcher := weblogin.NewFetcher(c.Timeout, c.TLSConfig, c.InsecureSkipVerify)
		if c.Bridge == nil {
			c.Bridge = weblogin.NewBridge(fetcher, nil)
		}
		if c.Submitter == nil {
			c.Submitter = weblogin.NewSubmitter(fetcher)
		}
	}

	return nil
}

// Authenticator orchestrates browserless logins against identity providers
// and caches the resulting sessions. It is thread-safe.
type Authenticator struct {
	config *Config
	group  singleflight.Group
}

// NewAuthenticator creates a new session orchestrator with the given
// configuration.
func NewAuthenticator(config *Config) (*Authenticator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Authenticator{config: config}, nil
}

// Login authenticates the user against the identity provider and returns a
// validated session. A session already registered for this (provider,
// username) pair is returned unchanged with no network activity.
// Concurrent logins for the same pair are collapsed into a single flow.
func (a *Authenticator) Login(ctx context.Context, issuer string, creds Credentials) (Session, error) {
	if strings.TrimSpace(issuer) == "" {
		return nil, ErrMissingProvider
	}
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}

	rp, err := a.relyingParty(ctx, issuer)
	if err != nil {
		return nil, err
	}

	if s := a.config.Identity.GetSession(rp, creds.Username); s != nil {
		return s, nil
	}

	v, err, _ := a.group.Do(sessionKey(issuer, creds.Username), func() (interface{}, error) {
		// A flight that finished while this call waited on the group has
		// already registered the session.
		if s := a.config.Identity.GetSession(rp, creds.Username); s != nil {
			return s, nil
		}

		s, err := a.createSession(ctx, rp, creds)
		if err != nil {
			return nil, err
		}

		a.config.Identity.AddSession(rp, creds.Username, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Session), nil
}

// CreateToken mints a proof-of-possession token bound to the target URL
// and the session. Tokens are minted on demand and never cached.
func (a *Authenticator) CreateToken(ctx context.Context, url string, s Session) (string, error) {
	if a.config.Tokens == nil {
		return "", ErrNoTokenIssuer
	}
	return a.config.Tokens.IssueFor(ctx, url, s)
}

// relyingParty reconstructs a handle from persisted provider settings, or
// performs dynamic client registration and persists the result.
func (a *Authenticator) relyingParty(ctx context.Context, issuer string) (RelyingParty, error) {
	if settings := a.config.Identity.GetProviderSettings(issuer); settings != nil {
		return a.config.Registrar.FromSettings(settings)
	}

	rp, err := a.config.Registrar.Register(ctx, issuer)
	if err != nil {
		return nil, err
	}

	a.config.Identity.AddProviderSettings(issuer, rp.Settings())
	return rp, nil
}

// createSession drives the full login flow: authorization request, login
// form scrape, credential submission, response validation. Any failing
// step aborts the attempt; no partial session is ever returned.
func (a *Authenticator) createSession(ctx context.Context, rp RelyingParty, creds Credentials) (Session, error) {
	req, err := rp.CreateRequest(ctx)
	if err != nil {
		return nil, err
	}

	form, err := a.config.Bridge.LoginForm(ctx, req.URL())
	if err != nil {
		return nil, err
	}

	accessURL, err := a.config.Submitter.Login(ctx, form, creds.Username, creds.Password)
	if err != nil {
		return nil, err
	}

	return rp.ValidateResponse(ctx, accessURL, req)
}
