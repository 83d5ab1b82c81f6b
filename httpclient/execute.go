// httpclient/execute.go
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/deploymenttheory/go-api-rest-client/headers"
	"github.com/deploymenttheory/go-api-rest-client/params"
	"github.com/deploymenttheory/go-api-rest-client/response"
	"github.com/deploymenttheory/go-api-rest-client/serializer"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Bookkeeping parameters added to every request for diagnostics.
const (
	APIClientNameHeader   = "X-ApiClientName"
	APIMethodNameHeader   = "X-ApiMethodName"
	APIRequestIDHeader    = "X-ApiRequestID"
	APITimestampParameter = "X-ApiTimestamp"
	APITickCountParameter = "X-ApiTickCount"
)

var processStart = time.Now()

type requestKey struct{}

// Execute sends a request and decodes the response into T.
//
// configure runs first and may add parameters, set the request format or replace the body with
// SetBody. body is then attached unless the method is GET, HEAD or OPTIONS: strings are sent
// verbatim with the content type of the request format, byte slices as application/octet-stream
// and any other value through the client serializer. string and []byte results receive the raw
// response body; other types are decoded by the serializer.
//
// Every failure is returned as the error built by the client ErrorFactory, a *response.APIError
// by default: transport failures, non-success statuses and successful responses whose decoded
// body reports errors through response.HasErrors. Cancellation of ctx is returned wrapped.
func Execute[T any](ctx context.Context, c *Client, method, path string, body any, configure func(*Request), methodName string) (T, error) {
	var result T

	req := NewRequest(method, path, c.mapper)
	req.SetEnumMode(c.enumMode).SetMethodName(methodName)

	if configure != nil {
		configure(req)
	}
	if b, _ := req.Body(); b == nil {
		if err := req.attachBody(c.serializer, body); err != nil {
			return result, err
		}
	}
	if err := req.Err(); err != nil {
		return result, fmt.Errorf("failed to map request parameters: %w", err)
	}
	requestID := c.addBookkeeping(req)

	if auth := c.Authenticator(); auth != nil {
		if err := auth.Authenticate(ctx, req); err != nil {
			c.log.LogError(requestID, method, path, response.StatusCodeOf(err), err)
			return result, err
		}
	}

	c.log.LogRequestStart(requestID, req.MethodName(), method, path)

	resp, err := c.send(ctx, req)
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		c.log.LogError(requestID, method, path, 0, ctxErr)
		return result, fmt.Errorf("%s %s: %w", method, path, ctxErr)
	}
	c.traceResponse(req, resp, err)

	var decodeErr error
	if err == nil {
		decodeErr = c.decode(resp, &result)
	}

	url := requestURL(c, req, resp)
	if failure := c.checkFailure(req, url, resp, err, decodeErr, &result); failure != nil {
		c.log.LogError(requestID, method, url, statusCode(resp), failure)
		var zero T
		return zero, failure
	}

	c.log.LogRequestEnd(requestID, method, url, resp.StatusCode(), resp.Time())
	headers.CheckDeprecationHeader(resp.Header(), url, c.log)

	return result, nil
}

// addBookkeeping adds the diagnostic parameters and returns the request ID.
func (c *Client) addBookkeeping(req *Request) string {
	req.startedAt = time.Now()
	requestID := uuid.NewString()

	req.AddURLSegment(APITimestampParameter, req.startedAt.Format(serializer.DateTimeLayout))
	req.AddURLSegment(APITickCountParameter, time.Since(processStart).Milliseconds())
	req.AddHeader(APIClientNameHeader, c.config.ClientName)
	if req.MethodName() != "" {
		req.AddHeader(APIMethodNameHeader, req.MethodName())
	}
	req.AddHeader(APIRequestIDHeader, requestID)

	return requestID
}

func (c *Client) send(ctx context.Context, req *Request) (*resty.Response, error) {
	rr := c.http.R().SetContext(context.WithValue(ctx, requestKey{}, req))

	form := make(map[string]string)
	for _, p := range req.parameters {
		value := params.FormatValue(p.Value)
		switch p.Location {
		case params.Query:
			rr.SetQueryParam(p.Name, value)
		case params.URLSegment:
			rr.SetPathParam(p.Name, value)
		case params.Header:
			rr.SetHeader(p.Name, value)
		case params.Cookie:
			rr.SetCookie(&http.Cookie{Name: p.Name, Value: value})
		case params.Body:
			form[p.Name] = value
		}
	}

	switch {
	case len(form) > 0:
		rr.SetFormData(form)
	case len(req.body) > 0:
		rr.SetHeader("Content-Type", req.contentType)
		rr.SetBody(req.body)
	}
	if req.basicAuth {
		rr.SetBasicAuth(req.username, req.password)
	}

	return rr.Execute(req.Method, req.Path)
}

// decode stores the response body in out: verbatim for *string and *[]byte, through the
// serializer otherwise. A blank body leaves out untouched.
func (c *Client) decode(resp *resty.Response, out any) error {
	switch p := out.(type) {
	case *string:
		*p = string(resp.Body())
		return nil
	case *[]byte:
		*p = resp.Body()
		return nil
	}

	data := resp.Body()
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if mimeType, _ := response.ParseContentTypeHeader(resp.Header().Get("Content-Type")); mimeType != "" && !serializer.Supports(c.serializer, mimeType) {
		return fmt.Errorf("%w: %s", response.ErrUnexpectedContentType, mimeType)
	}
	return c.serializer.Deserialize(data, out)
}

func requestURL(c *Client, req *Request, resp *resty.Response) string {
	if resp != nil && resp.Request != nil && resp.Request.RawRequest != nil {
		return resp.Request.RawRequest.URL.String()
	}
	if strings.HasPrefix(req.Path, "http://") || strings.HasPrefix(req.Path, "https://") {
		return req.Path
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
}

func statusCode(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}
