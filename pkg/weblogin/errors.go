package weblogin

import "errors"

var (
	// ErrNoRedirect indicates the authorization request was not answered
	// with a redirect to the provider's login page.
	ErrNoRedirect = errors.New("weblogin: provider did not redirect")

	// ErrUnexpectedLoginPage indicates the provider's response did not have
	// the expected shape (missing form, action, header or redirect target).
	ErrUnexpectedLoginPage = errors.New("weblogin: unexpected login page")

	// ErrLoginRejected indicates the provider refused the submitted
	// credentials.
	ErrLoginRejected = errors.New("weblogin: could not log in")
)
