package weblogin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Submitter posts credentials into a scraped login form and walks the
// resulting redirect chain to the access URL.
type Submitter struct {
	fetcher Fetcher
}

// NewSubmitter creates a Submitter using the given fetcher.
func NewSubmitter(fetcher Fetcher) *Submitter {
	return &Submitter{fetcher: fetcher}
}

// Login injects the username and password into the form fields, overriding
// any same-named scraped field, posts the form and follows the provider's
// redirect chain. The session cookie set on the successful credential check
// is carried to the next hop, whose Location header is the access URL.
func (s *Submitter) Login(ctx context.Context, form *Form, username, password string) (string, error) {
	fields := url.Values{}
	for name, values := range form.Fields {
		fields[name] = append([]string(nil), values...)
	}
	fields.Set("username", username)
	fields.Set("password", password)

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.fetcher.Fetch(ctx, Request{
		Method: http.MethodPost,
		URL:    form.Action,
		Header: header,
		Body:   fields.Encode(),
	})
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusFound {
		return "", fmt.Errorf("%w: %s", ErrLoginRejected, rejectionCause(resp.Body))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("%w: no redirect after credential submission", ErrUnexpectedLoginPage)
	}
	next, err := resolveURL(form.Action, location)
	if err != nil {
		return "", err
	}

	hopHeader := http.Header{}
	if cookie := sessionCookie(resp.Header); cookie != "" {
		hopHeader.Set("Cookie", cookie)
	}

	hop, err := s.fetcher.Fetch(ctx, Request{Method: http.MethodGet, URL: next, Header: hopHeader})
	if err != nil {
		return "", err
	}

	accessURL := hop.Header.Get("Location")
	if accessURL == "" {
		return "", fmt.Errorf("%w: no access redirect", ErrUnexpectedLoginPage)
	}
	return resolveURL(next, accessURL)
}

// sessionCookie trims the first Set-Cookie value to its name=value pair,
// discarding attributes. Only the first cookie is honored; providers
// setting several required cookies lose the rest (known limitation).
func sessionCookie(header http.Header) string {
	raw := header.Get("Set-Cookie")
	if raw == "" {
		return ""
	}
	if i := strings.Index(raw, ";"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
