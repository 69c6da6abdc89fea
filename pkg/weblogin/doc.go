// Package weblogin drives an identity provider's HTML login page without a
// browser.
//
// Given an OpenID Connect authorization URL, the Bridge follows the
// provider's redirect to its login page and scrapes the login form (action
// URL plus hidden fields such as CSRF tokens). The Submitter then posts the
// user's credentials into that form, carries the session cookie through the
// resulting redirect chain and returns the final access URL containing the
// token response.
//
// The package never follows redirects implicitly and never retries: every
// hop's status and headers are significant to the flow, so each request is
// issued and inspected individually through the Fetcher interface.
//
// Scraping is fragile coupling to the provider's markup. The FormExtractor
// interface isolates it so a provider-specific adapter can replace the
// generic HTML extraction without touching the orchestration above it.
package weblogin
