// httpclient/methods.go
package httpclient

import (
	"context"
	"net/http"
)

// Get sends a GET request for path and decodes the response into T. The API method name sent in
// the X-ApiMethodName header is the name of the calling function.
func Get[T any](ctx context.Context, c *Client, path string, configure ...func(*Request)) (T, error) {
	return Execute[T](ctx, c, http.MethodGet, path, nil, chain(configure), callerMethodName(1))
}

// Head sends a HEAD request for path.
func Head[T any](ctx context.Context, c *Client, path string, configure ...func(*Request)) (T, error) {
	return Execute[T](ctx, c, http.MethodHead, path, nil, chain(configure), callerMethodName(1))
}

// Options sends an OPTIONS request for path.
func Options[T any](ctx context.Context, c *Client, path string, configure ...func(*Request)) (T, error) {
	return Execute[T](ctx, c, http.MethodOptions, path, nil, chain(configure), callerMethodName(1))
}

// Post sends body to path with a POST request.
func Post[T any](ctx context.Context, c *Client, path string, body any, configure ...func(*Request)) (T, error) {
	return Execute[T](ctx, c, http.MethodPost, path, body, chain(configure), callerMethodName(1))
}

// Put sends body to path with a PUT request.
func Put[T any](ctx context.Context, c *Client, path string, body any, configure ...func(*Request)) (T, error) {
	return Execute[T](ctx, c, http.MethodPut, path, body, chain(configure), callerMethodName(1))
}

// Patch sends body to path with a PATCH request.
func Patch[T any](ctx context.Context, c *Client, path string, body any, configure ...func(*Request)) (T, error) {
	return Execute[T](ctx, c, http.MethodPatch, path, body, chain(configure), callerMethodName(1))
}

// Delete sends a DELETE request for path. body may be nil.
func Delete[T any](ctx context.Context, c *Client, path string, body any, configure ...func(*Request)) (T, error) {
	return Execute[T](ctx, c, http.MethodDelete, path, body, chain(configure), callerMethodName(1))
}

func chain(configure []func(*Request)) func(*Request) {
	if len(configure) == 0 {
		return nil
	}
	return func(r *Request) {
		for _, f := range configure {
			if f != nil {
				f(r)
			}
		}
	}
}
