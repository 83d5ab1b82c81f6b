// httpclient/client.go
/* The `httpclient` package provides a base client for typed REST APIs. Each API method is a thin
call to one of the generic verbs (Get, Post, ...), which map request objects onto query, URL
segment, header, cookie and form parameters, attach the auth headers of the client's
Authenticator, send the request through resty and turn every failure into a *response.APIError.
The package offers structured logging, optional request/response tracing and configuration
loaded from files or the environment. */
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/deploymenttheory/go-api-rest-client/enums"
	"github.com/deploymenttheory/go-api-rest-client/logger"
	"github.com/deploymenttheory/go-api-rest-client/params"
	"github.com/deploymenttheory/go-api-rest-client/response"
	"github.com/deploymenttheory/go-api-rest-client/serializer"
	"github.com/deploymenttheory/go-api-rest-client/version"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Tracer receives human-readable request and response summaries, for example t.Logf or log.Printf.
type Tracer func(format string, args ...any)

// ErrorFactory builds the error returned for a failed call. Override it with WithErrorFactory to
// return API-specific error types.
type ErrorFactory func(info response.Info, message string, errorResponse response.HasErrors, cause error) error

// Authenticator attaches authentication parameters to outgoing requests, acquiring credentials on
// first use. authenticationhandler.Authenticator implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, target params.Target) error
	Logout()
}

// Client is the base of a typed API client. It is safe for concurrent use.
type Client struct {
	config     ClientConfig
	http       *resty.Client
	serializer serializer.Serializer
	mapper     *params.Mapper
	log        logger.Logger
	tracer     Tracer
	enumMode   enums.Mode

	errorResponse func() response.HasErrors
	errorFactory  ErrorFactory

	lock sync.RWMutex
	auth Authenticator
}

// Option customises a Client built by BuildClient.
type Option func(*Client)

// WithSerializer replaces the JSON serializer used for request bodies, complex parameter values
// and response bodies.
func WithSerializer(s serializer.Serializer) Option {
	return func(c *Client) { c.serializer = s }
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTracer enables request and response tracing.
func WithTracer(t Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithRestyClient sends requests through rc instead of a new resty client. The base URL and
// timeout of the configuration are applied to it when set.
func WithRestyClient(rc *resty.Client) Option {
	return func(c *Client) { c.http = rc }
}

// WithErrorResponse replaces the structured error body decoded from failed responses.
func WithErrorResponse(f func() response.HasErrors) Option {
	return func(c *Client) { c.errorResponse = f }
}

// WithErrorFactory replaces the construction of the errors returned by failed calls.
func WithErrorFactory(f ErrorFactory) Option {
	return func(c *Client) { c.errorFactory = f }
}

// WithAuthenticator sets the authenticator at build time. Use SetAuthenticator when the
// authenticator needs the client itself.
func WithAuthenticator(a Authenticator) Option {
	return func(c *Client) { c.auth = a }
}

// BuildClient creates a new API client with the provided configuration.
func BuildClient(config ClientConfig, populateDefaultValues bool, opts ...Option) (*Client, error) {
	config, err := validateClientConfig(config, populateDefaultValues)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	setDefaultString(&config.ClientName, version.GetClientName())
	enumMode, _ := enums.ParseMode(config.EnumMode)

	client := &Client{
		config:   config,
		enumMode: enumMode,
		errorResponse: func() response.HasErrors {
			return &response.ErrorResponse{}
		},
		errorFactory: func(info response.Info, message string, errorResponse response.HasErrors, cause error) error {
			return response.NewAPIError(info, message, errorResponse, cause)
		},
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.log == nil {
		parsedLogLevel := logger.ParseLogLevelFromString(config.LogLevel)
		client.log, err = logger.BuildLogger(parsedLogLevel, config.LogOutputFormat, config.LogConsoleSeparator, config.LogExportPath)
		if err != nil {
			return nil, err
		}
	}
	if client.serializer == nil {
		client.serializer = serializer.NewJSON()
	}
	client.mapper = params.NewMapper(client.serializer)

	if client.http == nil {
		client.http = resty.New()
	}
	if config.BaseURL != "" {
		client.http.SetBaseURL(config.BaseURL)
	}
	if config.CustomTimeout > 0 {
		client.http.SetTimeout(config.CustomTimeout)
	}
	client.http.SetLogger(restyLogger{log: client.log})
	client.http.SetPreRequestHook(client.traceRequest)

	client.log.Debug("New API client initialized",
		zap.String("Base URL", config.BaseURL),
		zap.String("Client Name", config.ClientName),
		zap.String("Logging Level", config.LogLevel),
		zap.String("Log Encoding Format", config.LogOutputFormat),
		zap.Bool("Hide Sensitive Data In Logs", config.HideSensitiveData),
		zap.Duration("Custom Timeout", config.CustomTimeout),
		zap.String("Enum Mode", enumMode.String()),
		zap.Bool("Tracing", client.tracer != nil),
	)

	return client, nil
}

// SetAuthenticator installs the authenticator applied to every request. A client holds at most one.
func (c *Client) SetAuthenticator(a Authenticator) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.auth = a
}

// Authenticator returns the installed authenticator, or nil.
func (c *Client) Authenticator() Authenticator {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.auth
}

// Logout discards the credentials held by the authenticator. The next call authenticates again.
func (c *Client) Logout() {
	if a := c.Authenticator(); a != nil {
		a.Logout()
		c.log.Info("Logged out")
	}
}

// Config returns the effective configuration.
func (c *Client) Config() ClientConfig {
	return c.config
}

// Logger returns the client logger.
func (c *Client) Logger() logger.Logger {
	return c.log
}

// Serializer returns the serializer used for bodies and complex parameter values.
func (c *Client) Serializer() serializer.Serializer {
	return c.serializer
}

// HTTPClient returns the underlying net/http client of the transport.
func (c *Client) HTTPClient() *http.Client {
	return c.http.GetClient()
}
