// authenticationhandler/authenticationhandler_test.go
package authenticationhandler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploymenttheory/go-api-rest-client/logger"
	"github.com/deploymenttheory/go-api-rest-client/mocklogger"
	"github.com/deploymenttheory/go-api-rest-client/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// headerTarget records the headers an authenticator applies.
type headerTarget map[string]string

func (h headerTarget) AddParameter(name string, value any, loc params.Location) {
	if loc == params.Header {
		h[name] = params.FormatValue(value)
	}
}

func tokenHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// countingCredentials issues "token-<n>" and counts the exchanges.
func countingCredentials(calls *atomic.Int32) CredentialsFunc[string, string] {
	return func(ctx context.Context, client string) (string, error) {
		n := calls.Add(1)
		return client + "-token-" + string(rune('0'+n)), nil
	}
}

func TestAuthenticateAcquiresOnce(t *testing.T) {
	var calls atomic.Int32
	auth := NewAuthenticator[string, string]("api", countingCredentials(&calls), tokenHeaders, logger.NewNopLogger())
	assert.Equal(t, NotAuthenticated, auth.State())

	for i := 0; i < 5; i++ {
		target := headerTarget{}
		require.NoError(t, auth.Authenticate(context.Background(), target))
		assert.Equal(t, "Bearer api-token-1", target["Authorization"])
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Authenticated, auth.State())
	token, ok := auth.Token()
	assert.True(t, ok)
	assert.Equal(t, "api-token-1", token)
}

func TestLogoutTriggersNewAcquisition(t *testing.T) {
	var calls atomic.Int32
	auth := NewAuthenticator[string, string]("api", countingCredentials(&calls), tokenHeaders, nil)

	require.NoError(t, auth.Authenticate(context.Background(), headerTarget{}))
	auth.Logout()

	assert.Equal(t, NotAuthenticated, auth.State())
	assert.Empty(t, auth.Headers(), "logout clears the derived headers")
	token, ok := auth.Token()
	assert.False(t, ok)
	assert.Empty(t, token)

	target := headerTarget{}
	require.NoError(t, auth.Authenticate(context.Background(), target))
	require.NoError(t, auth.Authenticate(context.Background(), target))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "Bearer api-token-2", target["Authorization"])
}

func TestFailedAcquisitionResetsState(t *testing.T) {
	errRejected := errors.New("credentials rejected")
	var calls atomic.Int32
	creds := CredentialsFunc[string, string](func(ctx context.Context, client string) (string, error) {
		if calls.Add(1) == 1 {
			return "", errRejected
		}
		return "second", nil
	})

	mockLog := mocklogger.NewPermissiveMockLogger()
	auth := NewAuthenticator[string, string]("api", creds, tokenHeaders, mockLog)

	target := headerTarget{}
	err := auth.Authenticate(context.Background(), target)
	require.Error(t, err)
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, NotAuthenticated, auth.State())
	assert.Empty(t, target)
	mockLog.AssertCalled(t, "LogAuthTokenError", "NotAuthenticated", mock.Anything)

	require.NoError(t, auth.Authenticate(context.Background(), target))
	assert.Equal(t, "Bearer second", target["Authorization"])
	assert.Equal(t, int32(2), calls.Load())
}

func TestConcurrentCallersShareOneAcquisition(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	creds := CredentialsFunc[string, string](func(ctx context.Context, client string) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	})
	auth := NewAuthenticator[string, string]("api", creds, tokenHeaders, nil)

	const callers = 10
	var wg sync.WaitGroup
	errs := make([]error, callers)
	targets := make([]headerTarget, callers)
	for i := 0; i < callers; i++ {
		targets[i] = headerTarget{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = auth.Authenticate(context.Background(), targets[i])
		}(i)
	}

	require.Eventually(t, func() bool { return auth.State() == InProgress }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < callers; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, "Bearer shared", targets[i]["Authorization"])
	}
}

func TestLogoutDuringAcquisitionStartsOver(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	creds := CredentialsFunc[string, string](func(ctx context.Context, client string) (string, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-release
			return "stale", nil
		}
		return "fresh", nil
	})
	auth := NewAuthenticator[string, string]("api", creds, tokenHeaders, nil)

	target := headerTarget{}
	result := make(chan error, 1)
	go func() { result <- auth.Authenticate(context.Background(), target) }()

	<-started
	auth.Logout()
	close(release)

	require.NoError(t, <-result)
	assert.Equal(t, "Bearer fresh", target["Authorization"], "the discarded token is never applied")
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, Authenticated, auth.State())
	token, ok := auth.Token()
	assert.True(t, ok)
	assert.Equal(t, "fresh", token)
}

func TestWaitersReceiveAcquisitionError(t *testing.T) {
	errDown := errors.New("token endpoint down")
	release := make(chan struct{})
	creds := CredentialsFunc[string, string](func(ctx context.Context, client string) (string, error) {
		<-release
		return "", errDown
	})
	auth := NewAuthenticator[string, string]("api", creds, tokenHeaders, nil)

	first := make(chan error, 1)
	go func() { first <- auth.Authenticate(context.Background(), headerTarget{}) }()
	require.Eventually(t, func() bool { return auth.State() == InProgress }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- auth.Authenticate(context.Background(), headerTarget{}) }()

	close(release)
	assert.ErrorIs(t, <-first, errDown)
	assert.ErrorIs(t, <-second, errDown)
	assert.Equal(t, NotAuthenticated, auth.State())
}

func TestWaiterHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	creds := CredentialsFunc[string, string](func(ctx context.Context, client string) (string, error) {
		<-release
		return "late", nil
	})
	auth := NewAuthenticator[string, string]("api", creds, tokenHeaders, nil)

	go func() { _ = auth.Authenticate(context.Background(), headerTarget{}) }()
	require.Eventually(t, func() bool { return auth.State() == InProgress }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := auth.Authenticate(ctx, headerTarget{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReentrantCallSkipsAcquisition(t *testing.T) {
	var calls atomic.Int32
	var auth *Authenticator[string, string]
	inner := headerTarget{}

	creds := CredentialsFunc[string, string](func(ctx context.Context, client string) (string, error) {
		calls.Add(1)
		assert.True(t, IsAuthenticating(ctx))
		// the token request goes through the same client and therefore the same authenticator
		if err := auth.Authenticate(ctx, inner); err != nil {
			return "", err
		}
		return "outer", nil
	})
	auth = NewAuthenticator[string, string]("api", creds, tokenHeaders, nil)

	outer := headerTarget{}
	require.NoError(t, auth.Authenticate(context.Background(), outer))

	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, inner, "the token request carries no auth headers")
	assert.Equal(t, "Bearer outer", outer["Authorization"])
	assert.False(t, IsAuthenticating(context.Background()))
}

func TestHeadersReturnsCopy(t *testing.T) {
	var calls atomic.Int32
	auth := NewAuthenticator[string, string]("api", countingCredentials(&calls), tokenHeaders, nil)
	require.NoError(t, auth.Authenticate(context.Background(), headerTarget{}))

	h := auth.Headers()
	h["Authorization"] = "tampered"
	assert.Equal(t, "Bearer api-token-1", auth.Headers()["Authorization"])
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{NotAuthenticated, "NotAuthenticated"},
		{InProgress, "InProgress"},
		{Authenticated, "Authenticated"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}
