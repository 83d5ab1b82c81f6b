// authenticationhandler/auth_bearer_token.go
package authenticationhandler

import (
	"context"
	"errors"
	"time"

	"github.com/deploymenttheory/go-api-rest-client/httpclient"
	"go.uber.org/zap"
)

// DefaultBearerTokenPath is the token endpoint used when BasicTokenCredentials.Path is empty.
const DefaultBearerTokenPath = "/api/v1/auth/token"

// TokenResponse is the body returned by a basic-auth token endpoint.
type TokenResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// BasicTokenCredentials exchange a username and password, sent with HTTP basic
// authentication, for a bearer token.
type BasicTokenCredentials struct {
	Path     string
	Username string
	Password string
}

// Validate checks the username and password with the package validators.
func (b BasicTokenCredentials) Validate() error {
	if ok, msg := IsValidUsername(b.Username); !ok {
		return errors.New(msg)
	}
	if ok, msg := IsValidPassword(b.Password); !ok {
		return errors.New(msg)
	}
	return nil
}

// Authenticate validates the credentials and posts to the token endpoint with basic
// authentication. When the response carries no expiry, the exp claim of a JWT token is
// used instead. Invalid credentials fail without a request.
func (b BasicTokenCredentials) Authenticate(ctx context.Context, client *httpclient.Client) (Token, error) {
	if err := b.Validate(); err != nil {
		return Token{}, err
	}
	path := b.Path
	if path == "" {
		path = DefaultBearerTokenPath
	}

	client.Logger().Debug("Attempting to obtain token for user", zap.String("Username", b.Username))

	resp, err := httpclient.Post[TokenResponse](ctx, client, path, nil, func(r *httpclient.Request) {
		r.SetBasicAuth(b.Username, b.Password)
	})
	if err != nil {
		return Token{}, err
	}
	if resp.Token == "" {
		return Token{}, errors.New("empty token received")
	}

	expires := resp.Expires
	if expires.IsZero() {
		expires, _ = ParseJWTExpiry(resp.Token)
	}

	client.Logger().Info("Token obtained successfully", zap.Time("Expiry", expires), zap.Duration("Duration", time.Until(expires)))
	return Token{AccessToken: resp.Token, TokenType: "Bearer", ExpiresAt: expires}, nil
}

// NewBasicTokenAuthenticator returns an Authenticator exchanging basic credentials for a
// bearer token on client.
func NewBasicTokenAuthenticator(client *httpclient.Client, credentials BasicTokenCredentials) *Authenticator[*httpclient.Client, Token] {
	return NewAuthenticator[*httpclient.Client, Token](client, credentials, BearerHeaders, client.Logger())
}
