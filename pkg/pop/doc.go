// Package pop issues proof-of-possession tokens for protected resource
// access. A token is a short-lived JWT bound to the target URL's origin and
// signed with the session's ephemeral key, proving the caller holds the
// session that carried the embedded ID token.
package pop
