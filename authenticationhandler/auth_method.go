// authenticationhandler/auth_method.go
package authenticationhandler

import (
	"errors"

	"github.com/deploymenttheory/go-api-rest-client/httpclient"
)

const (
	AuthMethodOAuth2    = "oauth2"
	AuthMethodBasicAuth = "basicauth"
	AuthMethodUnknown   = "unknown"
)

// AuthConfig holds the credentials an authenticator can be built from. OAuth client credentials
// take precedence over a username and password.
type AuthConfig struct {
	ClientID     string `json:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret"`
	Scope        string `json:"scope" mapstructure:"scope"`
	Username     string `json:"username" mapstructure:"username"`
	Password     string `json:"password" mapstructure:"password"`
	// TokenPath overrides the default token endpoint of the selected method.
	TokenPath string `json:"token_path" mapstructure:"token_path"`
}

// DetermineAuthMethod determines the authentication method based on the provided credentials.
// It prefers strong authentication methods (e.g., OAuth) over weaker ones (e.g., bearer tokens).
// It returns "unknown" with an error if no valid credentials are provided.
func DetermineAuthMethod(authConfig AuthConfig) (string, error) {
	validClientID, validClientSecret, validUsername, validPassword := true, true, true, true
	clientIDErrMsg, clientSecretErrMsg, usernameErrMsg, passwordErrMsg := "", "", "", ""

	if authConfig.ClientID != "" || authConfig.ClientSecret != "" {
		validClientID, clientIDErrMsg = IsValidClientID(authConfig.ClientID)
		validClientSecret, clientSecretErrMsg = IsValidClientSecret(authConfig.ClientSecret)
		if validClientID && validClientSecret {
			return AuthMethodOAuth2, nil
		}
	}

	if authConfig.Username != "" || authConfig.Password != "" {
		validUsername, usernameErrMsg = IsValidUsername(authConfig.Username)
		validPassword, passwordErrMsg = IsValidPassword(authConfig.Password)
		if validUsername && validPassword {
			return AuthMethodBasicAuth, nil
		}
	}

	errorMsg := "No valid credentials provided."
	if !validClientID && authConfig.ClientID != "" {
		errorMsg += " " + clientIDErrMsg
	}
	if !validClientSecret && authConfig.ClientSecret != "" {
		errorMsg += " " + clientSecretErrMsg
	}
	if !validUsername && authConfig.Username != "" {
		errorMsg += " " + usernameErrMsg
	}
	if !validPassword && authConfig.Password != "" {
		errorMsg += " " + passwordErrMsg
	}

	return AuthMethodUnknown, errors.New(errorMsg)
}

// NewTokenAuthenticator builds the authenticator matching the credentials in authConfig and
// installs it on client.
func NewTokenAuthenticator(client *httpclient.Client, authConfig AuthConfig) (*Authenticator[*httpclient.Client, Token], error) {
	method, err := DetermineAuthMethod(authConfig)
	if err != nil {
		return nil, err
	}

	var auth *Authenticator[*httpclient.Client, Token]
	switch method {
	case AuthMethodOAuth2:
		auth = NewOAuthAuthenticator(client, OAuthClientCredentials{
			Path:              authConfig.TokenPath,
			ClientID:          authConfig.ClientID,
			ClientSecret:      authConfig.ClientSecret,
			Scope:             authConfig.Scope,
			HideSensitiveData: client.Config().HideSensitiveData,
		})
	default:
		auth = NewBasicTokenAuthenticator(client, BasicTokenCredentials{
			Path:     authConfig.TokenPath,
			Username: authConfig.Username,
			Password: authConfig.Password,
		})
	}

	client.SetAuthenticator(auth)
	return auth, nil
}
