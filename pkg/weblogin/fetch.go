package weblogin

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Request describes a single HTTP request to an identity provider.
type Request struct {
	// Method is the HTTP method. Defaults to GET when empty.
	Method string

	// URL is the absolute request URL.
	URL string

	// Header holds additional request headers (cookies, content type).
	Header http.Header

	// Body is the request body, already encoded by the caller.
	Body string
}

// Response is a fully buffered HTTP response.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Header holds the response headers.
	Header http.Header

	// Body is the complete response body.
	Body string
}

// Fetcher issues exactly one HTTP request and buffers the entire response.
// Redirects are never followed and nothing is retried: the login flow needs
// to inspect the status and headers of every individual hop.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// defaultFetcher is a production Fetcher built on net/http.
type defaultFetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with connection settings suitable for
// identity provider round trips.
func NewFetcher(timeout time.Duration, tlsConfig *tls.Config, insecureSkipVerify bool) Fetcher {
	customTLS := tlsConfig
	if customTLS == nil {
		customTLS = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	} else {
		// Clone to avoid modifying the original
		customTLS = tlsConfig.Clone()
	}

	if insecureSkipVerify {
		customTLS.InsecureSkipVerify = true
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       customTLS,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &defaultFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			// Each redirect hop carries state (cookies, fragments) the
			// caller has to see, so redirects are surfaced, not followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Fetch executes the request and returns the buffered response.
func (f *defaultFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("weblogin: building request: %w", err)
	}

	for name, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	if req.Body != "" {
		httpReq.ContentLength = int64(len(req.Body))
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("weblogin: request failed: %w", err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("weblogin: reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(buf),
	}, nil
}
