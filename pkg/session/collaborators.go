package session

import (
	"context"
	"encoding/json"

	"github.com/jeremyhahn/go-oidc-login/pkg/weblogin"
)

// Credentials is a username/password pair. It is held in memory only for
// the duration of a login attempt and never persisted.
type Credentials struct {
	Username string
	Password string
}

// Session is an opaque, protocol-validated credential bundle produced by a
// relying party. Its concrete shape is owned by the protocol collaborator;
// the orchestrator only needs the identity claim for cache keying.
type Session interface {
	// Subject returns the authenticated subject identifier.
	Subject() string

	// Issuer returns the identity provider that issued the session.
	Issuer() string
}

// AuthRequest is opaque per-request authorization state (state and nonce
// parameters) correlating an authorization request with its response.
type AuthRequest interface {
	// URL returns the authorization URL the login flow starts from.
	URL() string
}

// RelyingParty is a protocol-level client handle registered with an
// identity provider. Handles are created once per provider and reused
// across users.
type RelyingParty interface {
	// Issuer returns the identity provider origin this handle belongs to.
	Issuer() string

	// ClientID returns the registered OAuth client identifier.
	ClientID() string

	// Settings returns the provider settings needed to reconstruct this
	// handle later without a fresh registration.
	Settings() json.RawMessage

	// CreateRequest constructs an authorization request bound to the
	// handle's fixed redirect target.
	CreateRequest(ctx context.Context) (AuthRequest, error)

	// ValidateResponse verifies the tokens carried by the access URL
	// against the request state and yields the session. No session is
	// ever produced from a partially completed flow.
	ValidateResponse(ctx context.Context, accessURL string, req AuthRequest) (Session, error)
}

// Registrar obtains relying-party handles: by dynamic client registration
// with the issuer, or by reconstruction from persisted settings.
type Registrar interface {
	Register(ctx context.Context, issuer string) (RelyingParty, error)
	FromSettings(settings json.RawMessage) (RelyingParty, error)
}

// TokenIssuer mints proof-of-possession tokens bound to a target URL and a
// validated session.
type TokenIssuer interface {
	IssueFor(ctx context.Context, url string, s Session) (string, error)
}

// LoginBridge obtains the provider's login form for an authorization URL.
// Satisfied by weblogin.Bridge.
type LoginBridge interface {
	LoginForm(ctx context.Context, authURL string) (*weblogin.Form, error)
}

// CredentialSubmitter submits credentials into a login form and returns
// the access URL. Satisfied by weblogin.Submitter.
type CredentialSubmitter interface {
	Login(ctx context.Context, form *weblogin.Form, username, password string) (string, error)
}
