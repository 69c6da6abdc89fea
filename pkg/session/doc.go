// Package session orchestrates browserless OpenID Connect logins.
//
// The Authenticator ties together four collaborators: a Registrar that
// obtains protocol-level relying-party handles for an identity provider, a
// LoginBridge that scrapes the provider's HTML login page, a
// CredentialSubmitter that posts the user's credentials and follows the
// redirect chain, and an IdentityManager that persists provider settings
// and validated sessions.
//
// A login runs end to end only on a cache miss:
//
//	auth, err := session.NewAuthenticator(&session.Config{
//	    Registrar: oidc.NewRegistrar(oidc.RegistrarConfig{}),
//	    Tokens:    pop.NewIssuer(0),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := auth.Login(ctx, "https://idp.example/", session.Credentials{
//	    Username: "alice",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := auth.CreateToken(ctx, "https://resource.example/data", s)
//
// A second Login for the same provider and username returns the cached
// session without touching the network, and concurrent logins for the same
// pair share a single network flow. A session only exists after the
// relying party validated the complete redirect chain; rejected credentials
// never produce or cache one.
package session
