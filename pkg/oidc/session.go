package oidc

import (
	"crypto/ecdsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a validated implicit-flow login: the provider's tokens plus a
// fresh ECDSA key that proof-of-possession tokens for this session are
// signed with. It implements session.Session.
type Session struct {
	subject     string
	issuer      string
	idToken     string
	accessToken string
	expiry      time.Time
	claims      jwt.MapClaims
	proofKey    *ecdsa.PrivateKey
}

// Subject returns the authenticated subject identifier.
func (s *Session) Subject() string {
	return s.subject
}

// Issuer returns the identity provider that issued the session.
func (s *Session) Issuer() string {
	return s.issuer
}

// IDToken returns the raw validated ID token.
func (s *Session) IDToken() string {
	return s.idToken
}

// AccessToken returns the provider-issued access token, if any.
func (s *Session) AccessToken() string {
	return s.accessToken
}

// Expiry returns when the ID token expires.
func (s *Session) Expiry() time.Time {
	return s.expiry
}

// Expired returns true if the session's ID token has expired.
func (s *Session) Expired() bool {
	if s.expiry.IsZero() {
		return false
	}
	return time.Now().After(s.expiry)
}

// Claims returns the validated ID token claims.
func (s *Session) Claims() jwt.MapClaims {
	return s.claims
}

// ProofKey returns the session's proof-of-possession signing key.
func (s *Session) ProofKey() *ecdsa.PrivateKey {
	return s.proofKey
}
