// authenticationhandler/authenticationhandler.go

// Package authenticationhandler runs the one-time credential exchange shared by all
// calls of an API client and attaches the resulting auth headers to every request.
package authenticationhandler

import (
	"context"
	"fmt"
	"sync"

	"github.com/deploymenttheory/go-api-rest-client/logger"
	"github.com/deploymenttheory/go-api-rest-client/params"
	"go.uber.org/zap"
)

// State is the authentication progress of an Authenticator.
type State int

const (
	// NotAuthenticated means no token is held; the next call acquires one.
	NotAuthenticated State = iota
	// InProgress means a credential exchange is running.
	InProgress
	// Authenticated means a token is held and its headers are applied to every request.
	Authenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case InProgress:
		return "InProgress"
	case Authenticated:
		return "Authenticated"
	default:
		return "NotAuthenticated"
	}
}

// Credentials exchange a secret for a token of type T using the API client C.
// Implementations must pass ctx on to every call they make through the client.
type Credentials[C any, T any] interface {
	Authenticate(ctx context.Context, client C) (T, error)
}

// CredentialsFunc adapts a function to the Credentials interface.
type CredentialsFunc[C any, T any] func(ctx context.Context, client C) (T, error)

// Authenticate calls f(ctx, client).
func (f CredentialsFunc[C, T]) Authenticate(ctx context.Context, client C) (T, error) {
	return f(ctx, client)
}

// HeaderFunc derives the request headers carrying a token.
type HeaderFunc[T any] func(token T) map[string]string

type attempt struct {
	done chan struct{}
	err  error
}

// Authenticator acquires a token at most once between logouts and applies the headers
// derived from it to every request. It is safe for concurrent use: callers arriving
// while an exchange is running wait for its outcome instead of starting another one.
type Authenticator[C any, T any] struct {
	client      C
	credentials Credentials[C, T]
	headersFor  HeaderFunc[T]
	log         logger.Logger

	mu      sync.Mutex
	state   State
	token   T
	headers map[string]string
	pending *attempt
}

// NewAuthenticator creates an Authenticator for one API client instance. The credentials
// are only read, never modified.
func NewAuthenticator[C any, T any](client C, credentials Credentials[C, T], headers HeaderFunc[T], log logger.Logger) *Authenticator[C, T] {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Authenticator[C, T]{
		client:      client,
		credentials: credentials,
		headersFor:  headers,
		log:         log,
	}
}

type authenticatingKey struct{}

// IsAuthenticating reports whether ctx belongs to a credential exchange in progress.
func IsAuthenticating(ctx context.Context) bool {
	return ctx.Value(authenticatingKey{}) != nil
}

// Authenticate acquires a token if none is held and adds the auth headers to target.
// Requests issued by the credential exchange itself skip acquisition and receive the
// headers held so far. A failed exchange resets the state so the next call retries.
func (a *Authenticator[C, T]) Authenticate(ctx context.Context, target params.Target) error {
	if ctx.Value(authenticatingKey{}) != any(a) {
		if err := a.ensureToken(ctx); err != nil {
			return err
		}
	}

	for name, value := range a.Headers() {
		target.AddParameter(name, value, params.Header)
	}
	return nil
}

func (a *Authenticator[C, T]) ensureToken(ctx context.Context) error {
	for {
		a.mu.Lock()
		switch a.state {
		case Authenticated:
			a.mu.Unlock()
			return nil

		case InProgress:
			p := a.pending
			a.mu.Unlock()
			select {
			case <-p.done:
				if p.err != nil {
					return p.err
				}
			case <-ctx.Done():
				return ctx.Err()
			}

		default:
			p := &attempt{done: make(chan struct{})}
			a.state = InProgress
			a.pending = p
			a.mu.Unlock()
			return a.acquire(ctx, p)
		}
	}
}

func (a *Authenticator[C, T]) acquire(ctx context.Context, p *attempt) error {
	a.log.Debug("Acquiring auth token")

	token, err := a.credentials.Authenticate(context.WithValue(ctx, authenticatingKey{}, any(a)), a.client)
	var headers map[string]string
	if err == nil && a.headersFor != nil {
		headers = a.headersFor(token)
	}
	if err != nil {
		err = fmt.Errorf("authentication failed: %w", err)
	}

	a.mu.Lock()
	superseded := a.pending != p
	if !superseded {
		a.pending = nil
		if err != nil {
			a.state = NotAuthenticated
		} else {
			a.state = Authenticated
			a.token = token
			a.headers = copyHeaders(headers)
		}
	}
	p.err = err
	a.mu.Unlock()
	close(p.done)

	if err != nil {
		a.log.LogAuthTokenError(NotAuthenticated.String(), err)
		return err
	}
	if superseded {
		// Logout ran during the exchange and discarded its token.
		a.log.Debug("Auth token discarded by logout, acquiring again")
		return a.ensureToken(ctx)
	}
	a.log.Info("Auth token obtained", zap.Int("headers", len(headers)))
	return nil
}

// Logout discards the token and the derived headers. The next Authenticate call
// performs a new credential exchange. An exchange already running when Logout is
// called is discarded, and its callers start a new one.
func (a *Authenticator[C, T]) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()

	var zero T
	a.state = NotAuthenticated
	a.token = zero
	a.headers = nil
	a.pending = nil
}

// State returns the current authentication state.
func (a *Authenticator[C, T]) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Token returns the held token and whether the authenticator is authenticated.
func (a *Authenticator[C, T]) Token() (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token, a.state == Authenticated
}

// Headers returns a copy of the headers applied to requests.
func (a *Authenticator[C, T]) Headers() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyHeaders(a.headers)
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
