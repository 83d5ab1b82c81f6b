// httpclient/async.go
package httpclient

import (
	"context"
	"net/http"
)

// Future is the pending result of an asynchronous call.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed when the call has completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the call to complete and returns its result. If ctx is done first, Await
// returns ctx.Err(); the call itself is only cancelled through the context it was started with.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func executeAsync[T any](ctx context.Context, c *Client, method, path string, body any, configure func(*Request), methodName string) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = Execute[T](ctx, c, method, path, body, configure, methodName)
	}()
	return f
}

// GetAsync starts a GET request for path. The request runs through the same pipeline as Get.
func GetAsync[T any](ctx context.Context, c *Client, path string, configure ...func(*Request)) *Future[T] {
	return executeAsync[T](ctx, c, http.MethodGet, path, nil, chain(configure), callerMethodName(1))
}

// HeadAsync starts a HEAD request for path.
func HeadAsync[T any](ctx context.Context, c *Client, path string, configure ...func(*Request)) *Future[T] {
	return executeAsync[T](ctx, c, http.MethodHead, path, nil, chain(configure), callerMethodName(1))
}

// OptionsAsync starts an OPTIONS request for path.
func OptionsAsync[T any](ctx context.Context, c *Client, path string, configure ...func(*Request)) *Future[T] {
	return executeAsync[T](ctx, c, http.MethodOptions, path, nil, chain(configure), callerMethodName(1))
}

// PostAsync starts a POST request sending body to path.
func PostAsync[T any](ctx context.Context, c *Client, path string, body any, configure ...func(*Request)) *Future[T] {
	return executeAsync[T](ctx, c, http.MethodPost, path, body, chain(configure), callerMethodName(1))
}

// PutAsync starts a PUT request sending body to path.
func PutAsync[T any](ctx context.Context, c *Client, path string, body any, configure ...func(*Request)) *Future[T] {
	return executeAsync[T](ctx, c, http.MethodPut, path, body, chain(configure), callerMethodName(1))
}

// PatchAsync starts a PATCH request sending body to path.
func PatchAsync[T any](ctx context.Context, c *Client, path string, body any, configure ...func(*Request)) *Future[T] {
	return executeAsync[T](ctx, c, http.MethodPatch, path, body, chain(configure), callerMethodName(1))
}

// DeleteAsync starts a DELETE request for path.
func DeleteAsync[T any](ctx context.Context, c *Client, path string, body any, configure ...func(*Request)) *Future[T] {
	return executeAsync[T](ctx, c, http.MethodDelete, path, body, chain(configure), callerMethodName(1))
}
