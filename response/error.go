// response/error.go
// Package response provides the error type returned for failed API calls and the
// helpers used to turn an error response body into a readable message.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnexpectedContentType is returned when a response body cannot be decoded
// because the serializer does not handle its content type.
var ErrUnexpectedContentType = errors.New("unexpected response content type")

// Info describes the response an APIError is built from.
type Info struct {
	StatusCode  int
	Method      string
	URL         string
	ContentType string
	RawResponse string
}

// APIError is returned for every failed call: transport failures, non-success
// statuses and successful responses whose body reports errors.
type APIError struct {
	StatusCode    int       `json:"status_code"`  // HTTP status code, 0 when no response was received
	Method        string    `json:"method"`       // HTTP method used for the request
	URL           string    `json:"url"`          // The URL of the HTTP request
	Message       string    `json:"message"`      // Resolved error message, never blank
	RawResponse   string    `json:"raw_response"` // Raw response body for debugging
	ErrorResponse HasErrors `json:"-"`            // Structured error body, if one was decoded
	Err           error     `json:"-"`            // Underlying transport or decoding error
}

// NewAPIError builds an APIError. A blank message falls back to the status text.
func NewAPIError(info Info, message string, errorResponse HasErrors, cause error) *APIError {
	return &APIError{
		StatusCode:    info.StatusCode,
		Method:        info.Method,
		URL:           info.URL,
		Message:       fallbackMessage(info.StatusCode, message),
		RawResponse:   info.RawResponse,
		ErrorResponse: errorResponse,
		Err:           cause,
	}
}

// Error returns the resolved message, making APIError compatible with the error interface.
func (e *APIError) Error() string {
	return fallbackMessage(e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCodeOf returns the status code carried by err, or 0 when err is not an APIError.
func StatusCodeOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func fallbackMessage(statusCode int, message string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}
