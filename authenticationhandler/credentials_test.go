// authenticationhandler/credentials_test.go
package authenticationhandler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploymenttheory/go-api-rest-client/httpclient"
	"github.com/deploymenttheory/go-api-rest-client/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validClientID     = "123e4567-e89b-12d3-a456-426614174000"
	validClientSecret = "ValidSecret12345678"
)

// newTokenClient returns a client for a token endpoint that answers every request with body
// and counts the requests it received.
func newTokenClient(t *testing.T, body string) (*httpclient.Client, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	client, err := httpclient.BuildClient(httpclient.ClientConfig{BaseURL: server.URL}, true,
		httpclient.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)
	return client, &requests
}

func TestBasicTokenCredentialsValidate(t *testing.T) {
	tests := []struct {
		name        string
		credentials BasicTokenCredentials
		expectedErr string
	}{
		{"valid", BasicTokenCredentials{Username: "admin", Password: "password123"}, ""},
		{"blank username", BasicTokenCredentials{Password: "password123"}, "Username must contain only alphanumeric characters"},
		{"short password", BasicTokenCredentials{Username: "admin", Password: "short"}, "Password must be at least 8 characters long."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.credentials.Validate()
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestOAuthClientCredentialsValidate(t *testing.T) {
	tests := []struct {
		name        string
		credentials OAuthClientCredentials
		expectedErr string
	}{
		{"valid", OAuthClientCredentials{ClientID: validClientID, ClientSecret: validClientSecret}, ""},
		{"client id not a uuid", OAuthClientCredentials{ClientID: "people-app", ClientSecret: validClientSecret}, "Client ID is not a valid UUID format."},
		{"weak secret", OAuthClientCredentials{ClientID: validClientID, ClientSecret: "secret"}, "Client secret must be at least 16 characters long."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.credentials.Validate()
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expectedErr)
		})
	}
}

func TestInvalidCredentialsSendNoRequest(t *testing.T) {
	client, requests := newTokenClient(t, `{"token":"unused"}`)
	ctx := context.Background()

	_, err := BasicTokenCredentials{Username: "admin", Password: "short"}.Authenticate(ctx, client)
	assert.EqualError(t, err, "Password must be at least 8 characters long.")

	_, err = OAuthClientCredentials{ClientID: "people-app", ClientSecret: validClientSecret}.Authenticate(ctx, client)
	assert.EqualError(t, err, "Client ID is not a valid UUID format.")

	auth := NewBasicTokenAuthenticator(client, BasicTokenCredentials{Username: "admin", Password: "short"})
	err = auth.Authenticate(ctx, headerTarget{})
	assert.EqualError(t, err, "authentication failed: Password must be at least 8 characters long.")
	assert.Equal(t, NotAuthenticated, auth.State())

	assert.Equal(t, int32(0), requests.Load())
}

func TestBasicTokenCredentialsAuthenticate(t *testing.T) {
	client, requests := newTokenClient(t, `{"token":"abc","expires":"2030-01-02T03:04:05Z"}`)

	token, err := BasicTokenCredentials{Username: "admin", Password: "password123"}.Authenticate(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "abc", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, int32(1), requests.Load())
}

func TestOAuthClientCredentialsAuthenticate(t *testing.T) {
	client, requests := newTokenClient(t, `{"access_token":"xyz","token_type":"bearer","expires_in":60}`)

	token, err := OAuthClientCredentials{ClientID: validClientID, ClientSecret: validClientSecret}.Authenticate(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "xyz", token.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Minute), token.ExpiresAt, 5*time.Second)
	assert.Equal(t, map[string]string{"Authorization": "Bearer xyz"}, BearerHeaders(token))
	assert.Equal(t, int32(1), requests.Load())
}
