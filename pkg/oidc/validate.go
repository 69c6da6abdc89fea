package oidc

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeremyhahn/go-oidc-login/pkg/session"
)

// ValidateResponse verifies the token response carried by the access URL
// against the request's state and nonce, validates the ID token signature
// and claims against the provider's JWKS, and yields the session.
func (rp *relyingParty) ValidateResponse(ctx context.Context, accessURL string, req session.AuthRequest) (session.Session, error) {
	state, ok := req.(*authRequest)
	if !ok || state == nil {
		return nil, fmt.Errorf("%w: auth request was not created by this relying party", ErrInvalidResponse)
	}

	parsed, err := url.Parse(accessURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	params, err := responseParams(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if errCode := params.Get("error"); errCode != "" {
		return nil, fmt.Errorf("%w: provider returned %q", ErrInvalidResponse, errCode)
	}

	if params.Get("state") != state.state {
		return nil, ErrStateMismatch
	}

	idToken := params.Get("id_token")
	if idToken == "" {
		return nil, fmt.Errorf("%w: missing id_token", ErrInvalidResponse)
	}

	claims, err := rp.validateIDToken(ctx, idToken, state.nonce)
	if err != nil {
		return nil, err
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidIDToken)
	}

	var expiry time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiry = exp.Time
	}

	// The proof key lives only in memory and exists solely to sign
	// proof-of-possession tokens minted from this session.
	proofKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("oidc: generating session proof key: %w", err)
	}

	return &Session{
		subject:     subject,
		issuer:      rp.settings.Issuer,
		idToken:     idToken,
		accessToken: params.Get("access_token"),
		expiry:      expiry,
		claims:      claims,
		proofKey:    proofKey,
	}, nil
}

// responseParams reads the token response out of the URL fragment, falling
// back to the query for providers that return it there.
func responseParams(u *url.URL) (url.Values, error) {
	if u.Fragment != "" {
		return url.ParseQuery(u.Fragment)
	}
	return u.Query(), nil
}

// validateIDToken verifies the ID token signature against the provider's
// JWKS and checks issuer, audience, expiry and nonce.
func (rp *relyingParty) validateIDToken(ctx context.Context, idToken, nonce string) (jwt.MapClaims, error) {
	jwks, err := rp.keyfuncFor(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	token, err := jwt.Parse(idToken, jwks.Keyfunc,
		jwt.WithValidMethods([]string{
			"RS256", "RS384", "RS512",
			"ES256", "ES384", "ES512",
			"PS256", "PS384", "PS512",
		}),
		jwt.WithIssuer(rp.settings.Issuer),
		jwt.WithAudience(rp.settings.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrInvalidIDToken)
	}

	if got, _ := claims["nonce"].(string); got != nonce {
		return nil, ErrNonceMismatch
	}

	return claims, nil
}
