package oidc

import "errors"

var (
	// ErrDiscoveryFailed indicates the discovery document fetch failed.
	ErrDiscoveryFailed = errors.New("oidc: discovery failed")

	// ErrInvalidDiscovery indicates the discovery document is invalid or incomplete.
	ErrInvalidDiscovery = errors.New("oidc: invalid discovery document")

	// ErrRegistrationFailed indicates dynamic client registration failed.
	ErrRegistrationFailed = errors.New("oidc: client registration failed")

	// ErrInvalidSettings indicates persisted provider settings could not be
	// used to reconstruct a relying-party handle.
	ErrInvalidSettings = errors.New("oidc: invalid provider settings")

	// ErrInvalidResponse indicates the access URL did not carry a valid
	// authorization response.
	ErrInvalidResponse = errors.New("oidc: invalid authorization response")

	// ErrStateMismatch indicates the response state does not match the request.
	ErrStateMismatch = errors.New("oidc: state mismatch")

	// ErrInvalidIDToken indicates the ID token is invalid or failed validation.
	ErrInvalidIDToken = errors.New("oidc: invalid id token")

	// ErrNonceMismatch indicates nonce validation failed.
	ErrNonceMismatch = errors.New("oidc: nonce mismatch")
)
