//go:build integration

package login_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeremyhahn/go-oidc-login/pkg/oidc"
	"github.com/jeremyhahn/go-oidc-login/pkg/pop"
	"github.com/jeremyhahn/go-oidc-login/pkg/session"
	"github.com/jeremyhahn/go-oidc-login/pkg/weblogin"
)

const (
	testUsername = "alice"
	testPassword = "correct horse battery staple"
	testCSRF     = "csrf-token-42"
	testCookie   = "IDP_SESSION=tok-1"
)

// fakeProvider is a self-contained OIDC provider implementing discovery,
// dynamic registration, the implicit authorization flow and an HTML login
// page, the way a Keycloak-style server presents them.
type fakeProvider struct {
	server     *httptest.Server
	privateKey *rsa.PrivateKey

	clientID    string
	redirectURI string

	// state and nonce captured from the last authorization request.
	state string
	nonce string

	requests       atomic.Int64
	authorizeCalls atomic.Int64
	loginPosts     atomic.Int64
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	p := &fakeProvider{
		privateKey:  privateKey,
		clientID:    "it-client",
		redirectURI: oidc.DefaultRedirectURI,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", p.handleDiscovery)
	mux.HandleFunc("/register", p.handleRegister)
	mux.HandleFunc("/authorize", p.handleAuthorize)
	mux.HandleFunc("/login", p.handleLoginPage)
	mux.HandleFunc("/login/check", p.handleLoginCheck)
	mux.HandleFunc("/login/continue", p.handleContinue)
	mux.HandleFunc("/jwks", p.handleJWKS)

	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(p.server.Close)

	return p
}

func (p *fakeProvider) issuer() string { return p.server.URL }

func (p *fakeProvider) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"issuer":                 p.server.URL,
		"authorization_endpoint": p.server.URL + "/authorize",
		"token_endpoint":         p.server.URL + "/token",
		"jwks_uri":               p.server.URL + "/jwks",
		"registration_endpoint":  p.server.URL + "/register",
	})
}

func (p *fakeProvider) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"client_id": p.clientID})
}

func (p *fakeProvider) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	p.authorizeCalls.Add(1)
	q := r.URL.Query()
	p.state = q.Get("state")
	p.nonce = q.Get("nonce")

	if q.Get("client_id") != p.clientID || q.Get("response_type") != "id_token token" {
		http.Error(w, "invalid authorization request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Location", "/login?execution=first")
	w.WriteHeader(http.StatusFound)
}

func (p *fakeProvider) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<html><body>
		<form id="login-form" action="/login/check" method="post">
			<input type="hidden" name="csrf" value="%s"/>
			<input type="text" name="username"/>
			<input type="password" name="password"/>
		</form>
	</body></html>`, testCSRF)
}

func (p *fakeProvider) handleLoginCheck(w http.ResponseWriter, r *http.Request) {
	p.loginPosts.Add(1)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("csrf") != testCSRF {
		http.Error(w, "missing csrf token", http.StatusForbidden)
		return
	}

	if r.PostForm.Get("username") != testUsername || r.PostForm.Get("password") != testPassword {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><strong>Invalid username or password.</strong></body></html>`)
		return
	}

	w.Header().Set("Set-Cookie", testCookie+"; Path=/; HttpOnly")
	w.Header().Set("Location", "/login/continue")
	w.WriteHeader(http.StatusFound)
}

func (p *fakeProvider) handleContinue(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Cookie"), testCookie) {
		http.Error(w, "no session cookie", http.StatusForbidden)
		return
	}

	idToken := p.mintIDToken()

	fragment := url.Values{}
	fragment.Set("id_token", idToken)
	fragment.Set("access_token", "provider-access-token")
	fragment.Set("token_type", "Bearer")
	fragment.Set("state", p.state)

	w.Header().Set("Location", p.redirectURI+"#"+fragment.Encode())
	w.WriteHeader(http.StatusFound)
}

func (p *fakeProvider) mintIDToken() string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   p.server.URL,
		"aud":   p.clientID,
		"sub":   testUsername,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"nonce": p.nonce,
	})
	token.Header["kid"] = "test-key-id"

	signed, err := token.SignedString(p.privateKey)
	if err != nil {
		panic(err)
	}
	return signed
}

func (p *fakeProvider) handleJWKS(w http.ResponseWriter, r *http.Request) {
	publicKey := &p.privateKey.PublicKey
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"keys": []map[string]interface{}{
			{
				"kty": "RSA",
				"kid": "test-key-id",
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()),
			},
		},
	})
}

func newIntegrationAuthenticator(t *testing.T) *session.Authenticator {
	t.Helper()

	auth, err := session.NewAuthenticator(&session.Config{
		Registrar: oidc.NewRegistrar(oidc.RegistrarConfig{ClientName: "integration-client"}),
		Tokens:    pop.NewIssuer(time.Minute),
		Timeout:   10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create authenticator: %v", err)
	}
	return auth
}

// TestIntegration_FullLoginFlow drives the complete stack against the fake
// provider: registration, authorization, login form scrape, credential
// submission, token response validation and proof token issuance.
func TestIntegration_FullLoginFlow(t *testing.T) {
	provider := newFakeProvider(t)
	auth := newIntegrationAuthenticator(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := auth.Login(ctx, provider.issuer(), session.Credentials{
		Username: testUsername,
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	if s.Subject() != testUsername {
		t.Errorf("Expected subject '%s', got '%s'", testUsername, s.Subject())
	}
	if s.Issuer() != provider.issuer() {
		t.Errorf("Expected issuer '%s', got '%s'", provider.issuer(), s.Issuer())
	}
	if got := provider.loginPosts.Load(); got != 1 {
		t.Errorf("Expected 1 credential submission, got %d", got)
	}

	// Proof tokens are minted from the session's own key, so the target
	// service can pin them to this login.
	token, err := auth.CreateToken(ctx, "https://api.example.com/v1/resources", s)
	if err != nil {
		t.Fatalf("CreateToken() failed: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("Expected a compact JWT, got %d segments", len(parts))
	}
}

// TestIntegration_SecondLoginUsesCache verifies that a repeated login for
// the same provider and username is served from the session cache with no
// further provider traffic.
func TestIntegration_SecondLoginUsesCache(t *testing.T) {
	provider := newFakeProvider(t)
	auth := newIntegrationAuthenticator(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creds := session.Credentials{Username: testUsername, Password: testPassword}

	first, err := auth.Login(ctx, provider.issuer(), creds)
	if err != nil {
		t.Fatalf("First Login() failed: %v", err)
	}

	before := provider.requests.Load()

	second, err := auth.Login(ctx, provider.issuer(), creds)
	if err != nil {
		t.Fatalf("Second Login() failed: %v", err)
	}

	if first != second {
		t.Error("Expected the cached session instance")
	}
	if after := provider.requests.Load(); after != before {
		t.Errorf("Expected no provider traffic on cache hit, saw %d requests", after-before)
	}
}

// TestIntegration_RejectedCredentials verifies the provider's rejection page
// surfaces as a login error carrying the page's emphasized cause.
func TestIntegration_RejectedCredentials(t *testing.T) {
	provider := newFakeProvider(t)
	auth := newIntegrationAuthenticator(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := auth.Login(ctx, provider.issuer(), session.Credentials{
		Username: testUsername,
		Password: "wrong-password",
	})
	if !errors.Is(err, weblogin.ErrLoginRejected) {
		t.Fatalf("Expected ErrLoginRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid username or password.") {
		t.Errorf("Expected the rejection cause in the error, got %q", err)
	}

	// A failed attempt registers nothing; the next login with good
	// credentials runs the full flow.
	if _, err := auth.Login(ctx, provider.issuer(), session.Credentials{
		Username: testUsername,
		Password: testPassword,
	}); err != nil {
		t.Fatalf("Login() after rejection failed: %v", err)
	}
	if got := provider.loginPosts.Load(); got != 2 {
		t.Errorf("Expected 2 credential submissions, got %d", got)
	}
}
