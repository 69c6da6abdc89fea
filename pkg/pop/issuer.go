package pop

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jeremyhahn/go-oidc-login/pkg/session"
)

var (
	// ErrNotProofCapable indicates the session does not carry
	// proof-of-possession key material.
	ErrNotProofCapable = errors.New("pop: session cannot mint proof tokens")

	// ErrInvalidTarget indicates the target URL is not absolute.
	ErrInvalidTarget = errors.New("pop: invalid target url")
)

// defaultTTL keeps proof tokens short-lived; they are minted per request.
const defaultTTL = 5 * time.Minute

// ProofSource is the capability a session must expose for token issuance.
// Sessions produced by pkg/oidc implement it.
type ProofSource interface {
	IDToken() string
	ProofKey() *ecdsa.PrivateKey
}

// Issuer mints proof-of-possession tokens bound to a target URL and a
// session. It implements session.TokenIssuer.
type Issuer struct {
	ttl time.Duration
}

// NewIssuer creates an Issuer. A non-positive ttl selects the default
// token lifetime.
func NewIssuer(ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{ttl: ttl}
}

// IssueFor mints a token bound to the target URL's origin, signed with the
// session's proof key and carrying the session's ID token. Tokens are
// never cached; every call produces a fresh one.
func (i *Issuer) IssueFor(ctx context.Context, target string, s session.Session) (string, error) {
	source, ok := s.(ProofSource)
	if !ok || source.ProofKey() == nil {
		return "", ErrNotProofCapable
	}

	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		// The audience is the target origin, not the full URL, so one
		// token covers a request and its same-origin follow-ups.
		"aud":      parsed.Scheme + "://" + parsed.Host,
		"sub":      s.Subject(),
		"iat":      now.Unix(),
		"exp":      now.Add(i.ttl).Unix(),
		"jti":      uuid.NewString(),
		"id_token": source.IDToken(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signed, err := token.SignedString(source.ProofKey())
	if err != nil {
		return "", fmt.Errorf("pop: signing token: %w", err)
	}
	return signed, nil
}
