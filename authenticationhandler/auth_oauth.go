// authenticationhandler/auth_oauth.go
package authenticationhandler

import (
	"context"
	"errors"
	"time"

	"github.com/deploymenttheory/go-api-rest-client/headers/redact"
	"github.com/deploymenttheory/go-api-rest-client/httpclient"
	"go.uber.org/zap"
)

// DefaultOAuthTokenPath is the token endpoint used when OAuthClientCredentials.Path is empty.
const DefaultOAuthTokenPath = "/api/oauth/token"

// OAuthResponse represents the response structure when obtaining an OAuth access token.
type OAuthResponse struct {
	AccessToken      string `json:"access_token"`            // AccessToken is the token that can be used in subsequent requests for authentication.
	ExpiresIn        int64  `json:"expires_in"`              // ExpiresIn specifies the duration in seconds after which the access token expires.
	TokenType        string `json:"token_type"`              // TokenType indicates the type of token, typically "Bearer".
	RefreshToken     string `json:"refresh_token,omitempty"` // RefreshToken is used to obtain a new access token when the current one expires.
	Error            string `json:"error,omitempty"`         // Error contains details if an error occurs during the token acquisition process.
	ErrorDescription string `json:"error_description,omitempty"`
}

// HasErrors reports whether the token endpoint returned an OAuth error.
func (o *OAuthResponse) HasErrors() bool {
	return o.Error != ""
}

// ErrorMessage returns the OAuth error description, or the error code when none is given.
func (o *OAuthResponse) ErrorMessage() string {
	if o.ErrorDescription != "" {
		return o.ErrorDescription
	}
	return o.Error
}

// OAuthClientCredentials perform the OAuth 2.0 client credentials grant.
type OAuthClientCredentials struct {
	Path         string
	ClientID     string
	ClientSecret string
	Scope        string
	// HideSensitiveData redacts the access token in log output.
	HideSensitiveData bool
}

// Validate checks the client ID and secret with the package validators.
func (o OAuthClientCredentials) Validate() error {
	if ok, msg := IsValidClientID(o.ClientID); !ok {
		return errors.New(msg)
	}
	if ok, msg := IsValidClientSecret(o.ClientSecret); !ok {
		return errors.New(msg)
	}
	return nil
}

// Authenticate validates the credentials, posts the grant as form fields and converts the
// response into a Token. Invalid credentials fail without a request.
// An OAuth error in a successful response is reported as an API error.
func (o OAuthClientCredentials) Authenticate(ctx context.Context, client *httpclient.Client) (Token, error) {
	if err := o.Validate(); err != nil {
		return Token{}, err
	}
	path := o.Path
	if path == "" {
		path = DefaultOAuthTokenPath
	}

	client.Logger().Debug("Attempting to obtain OAuth token", zap.String("ClientID", o.ClientID), zap.String("Scope", o.Scope))

	resp, err := httpclient.Post[OAuthResponse](ctx, client, path, nil, func(r *httpclient.Request) {
		r.AddFormField("client_id", o.ClientID)
		r.AddFormField("client_secret", o.ClientSecret)
		if o.Scope != "" {
			r.AddFormField("scope", o.Scope)
		}
		r.AddFormField("grant_type", "client_credentials")
	})
	if err != nil {
		return Token{}, err
	}
	if resp.AccessToken == "" {
		return Token{}, errors.New("empty access token received")
	}

	var expires time.Time
	if resp.ExpiresIn > 0 {
		expires = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	redacted := redact.RedactSensitiveHeaderData(o.HideSensitiveData, "AccessToken", resp.AccessToken)
	client.Logger().Info("OAuth token obtained successfully", zap.String("AccessToken", redacted), zap.Time("ExpirationTime", expires))

	return Token{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expires,
	}, nil
}

// NewOAuthAuthenticator returns an Authenticator performing the client credentials grant
// on client.
func NewOAuthAuthenticator(client *httpclient.Client, credentials OAuthClientCredentials) *Authenticator[*httpclient.Client, Token] {
	return NewAuthenticator[*httpclient.Client, Token](client, credentials, BearerHeaders, client.Logger())
}
