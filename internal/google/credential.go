package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// expiryThreshold is how close to expiry a token may be before it is treated
// as expired. Keeps in-flight API calls from racing the actual expiry.
const expiryThreshold = 5 * time.Minute

// Credential holds everything needed to call Google APIs on behalf of a user
// and to refresh the access token when it expires. It is the unit stored in
// the per-conversation credential cache.
type Credential struct {
	AccessToken   string    `json:"access_token"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	TokenEndpoint string    `json:"token_endpoint"`
	ClientID      string    `json:"client_id"`
	ClientSecret  string    `json:"client_secret"`
	Scopes        []string  `json:"scopes"`
	Expiry        time.Time `json:"expiry,omitzero"`
}

// Expired reports whether the access token has expired or will expire within
// the safety threshold. A zero Expiry means the token does not expire.
func (c *Credential) Expired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(expiryThreshold).After(c.Expiry)
}

// Valid reports whether the credential can be used for API calls as-is.
func (c *Credential) Valid() bool {
	return c != nil && c.AccessToken != "" && !c.Expired()
}

// CanRefresh reports whether the credential carries enough material to obtain
// a fresh access token.
func (c *Credential) CanRefresh() bool {
	return c != nil && c.RefreshToken != "" && c.ClientID != ""
}

// Token converts the credential to an oauth2.Token.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// oauthConfig builds the oauth2.Config used for refreshing this credential.
func (c *Credential) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: c.TokenEndpoint,
		},
		Scopes: c.Scopes,
	}
}

// Refresh performs a single synchronous refresh against the token endpoint
// and returns a new credential carrying the fresh access token. The refresh
// token is preserved when the endpoint does not rotate it.
func (c *Credential) Refresh(ctx context.Context) (*Credential, error) {
	if !c.CanRefresh() {
		return nil, fmt.Errorf("credential has no refresh token")
	}

	ts := c.oauthConfig().TokenSource(ctx, &oauth2.Token{
		RefreshToken: c.RefreshToken,
	})
	newToken, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	refreshed := &Credential{
		AccessToken:   newToken.AccessToken,
		RefreshToken:  newToken.RefreshToken,
		TokenEndpoint: c.TokenEndpoint,
		ClientID:      c.ClientID,
		ClientSecret:  c.ClientSecret,
		Scopes:        c.Scopes,
		Expiry:        newToken.Expiry,
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = c.RefreshToken
	}
	return refreshed, nil
}

// HTTPClient returns an HTTP client that authenticates requests with the
// credential's access token. The client is configured to use HTTP/1.1 to
// avoid HTTP/2 protocol errors with Google APIs.
//
// The client uses a static token source: expiry and refresh are handled by
// the credential cache manager, not transparently mid-request.
func (c *Credential) HTTPClient(ctx context.Context) *http.Client {
	ts := oauth2.StaticTokenSource(c.Token())
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}
	return client
}
