// Package oidc is the default relying-party protocol collaborator for the
// session orchestrator.
//
// The Registrar discovers an identity provider's metadata and performs
// RFC 7591 dynamic client registration with a fixed implicit-flow
// configuration: grant type "implicit", response type "id_token token",
// scope "openid profile" and a single sentinel redirect URI. The redirect
// is never followed over the network; the flow is completed at the HTML
// layer by pkg/weblogin, and the tokens are read back out of the final
// redirect URL's fragment.
//
// ValidateResponse checks state, verifies the ID token signature against
// the provider's JWKS and validates issuer, audience, expiry and nonce.
package oidc
