// logfields.go
package logger

import (
	"time"

	"go.uber.org/zap"
)

// LogRequestStart logs the initiation of an API call, including the calling API method,
// the HTTP method and the URL template.
func (d *defaultLogger) LogRequestStart(requestID string, apiMethod string, method string, url string) {
	d.Debug("HTTP request started",
		zap.String("event", "request_start"),
		zap.String("request_id", requestID),
		zap.String("api_method", apiMethod),
		zap.String("method", method),
		zap.String("url", url),
	)
}

// LogRequestEnd logs the completion of an HTTP request with its status code and duration.
func (d *defaultLogger) LogRequestEnd(requestID string, method string, url string, statusCode int, duration time.Duration) {
	d.Info("HTTP request completed",
		zap.String("event", "request_end"),
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.Duration("duration", duration),
	)
}

// LogError logs a failed API call. The returned error is discarded because callers
// already hold the error being reported.
func (d *defaultLogger) LogError(requestID string, method string, url string, statusCode int, err error) {
	_ = d.Error("Error during HTTP request",
		zap.String("event", "request_error"),
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.Error(err),
	)
}

// LogAuthTokenError logs a failed credential exchange along with the authenticator state
// it left behind.
func (d *defaultLogger) LogAuthTokenError(state string, err error) {
	_ = d.Error("Failed to obtain auth token",
		zap.String("event", "auth_token_error"),
		zap.String("state", state),
		zap.Error(err),
	)
}
