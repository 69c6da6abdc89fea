package session

import "errors"

var (
	// ErrInvalidConfiguration indicates the authenticator configuration is invalid.
	ErrInvalidConfiguration = errors.New("session: invalid configuration")

	// ErrMissingProvider indicates no identity provider URL was supplied.
	ErrMissingProvider = errors.New("session: identity provider url is required")

	// ErrMissingCredentials indicates the username or password was empty.
	ErrMissingCredentials = errors.New("session: username and password are required")

	// ErrNoTokenIssuer indicates CreateToken was called without a
	// configured proof-of-possession issuer.
	ErrNoTokenIssuer = errors.New("session: token issuer is not configured")
)
