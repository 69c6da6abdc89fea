package weblogin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Bridge turns an authorization redirect into the provider's login form.
// It follows the single expected redirect, scrapes the login page and
// returns the resolved submission form.
type Bridge struct {
	fetcher   Fetcher
	extractor FormExtractor
}

// NewBridge creates a Bridge from a fetcher and a form extractor.
func NewBridge(fetcher Fetcher, extractor FormExtractor) *Bridge {
	if extractor == nil {
		extractor = NewFormExtractor()
	}
	return &Bridge{
		fetcher:   fetcher,
		extractor: extractor,
	}
}

// LoginForm fetches the authorization URL, expects a redirect to the login
// page, scrapes that page and returns the form with its action resolved
// against the page URL.
func (b *Bridge) LoginForm(ctx context.Context, authURL string) (*Form, error) {
	resp, err := b.fetcher.Fetch(ctx, Request{Method: http.MethodGet, URL: authURL})
	if err != nil {
		return nil, err
	}

	location := resp.Header.Get("Location")
	if resp.StatusCode < 300 || resp.StatusCode >= 400 || location == "" {
		return nil, fmt.Errorf("%w: status %d from authorization endpoint", ErrNoRedirect, resp.StatusCode)
	}

	pageURL, err := resolveURL(authURL, location)
	if err != nil {
		return nil, err
	}

	page, err := b.fetcher.Fetch(ctx, Request{Method: http.MethodGet, URL: pageURL})
	if err != nil {
		return nil, err
	}

	form, err := b.extractor.ExtractLoginForm(page.Body)
	if err != nil {
		return nil, err
	}

	action, err := resolveURL(pageURL, form.Action)
	if err != nil {
		return nil, err
	}
	form.Action = action

	return form, nil
}

// resolveURL resolves ref against base, yielding an absolute URL.
func resolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q: %v", ErrUnexpectedLoginPage, base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q: %v", ErrUnexpectedLoginPage, ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
