// httpclient/failure.go
package httpclient

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"reflect"
	"strings"

	"github.com/deploymenttheory/go-api-rest-client/response"
	"github.com/deploymenttheory/go-api-rest-client/serializer"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// checkFailure returns the error for a failed call, or nil on success.
//
// A call succeeds when a response was received with a 2xx status and its body decoded. A decoded
// result reporting errors through response.HasErrors fails the call whatever the status. For
// other failures the message is taken from the transport error, unless it is deserialization
// noise, and otherwise from the body: a structured error response when the serializer reads the
// content type, the text of an HTML or XML page, or the raw content.
func (c *Client) checkFailure(req *Request, url string, resp *resty.Response, transportErr, decodeErr error, result any) error {
	var body []byte
	var contentType string
	code := statusCode(resp)
	if resp != nil {
		body = resp.Body()
		contentType = resp.Header().Get("Content-Type")
	}
	info := response.Info{
		StatusCode:  code,
		Method:      req.Method,
		URL:         url,
		ContentType: contentType,
		RawResponse: string(body),
	}

	cause := transportErr
	if cause == nil {
		cause = decodeErr
	}

	if decodeErr == nil {
		if hasErrors := errorsCapability(result); response.ReportsErrors(hasErrors) {
			message := firstNonBlank(hasErrors.ErrorMessage(), errorText(cause), string(body))
			c.log.Debug("Response reports errors", zap.Int("status_code", code), zap.String("message", message))
			return c.errorFactory(info, message, hasErrors, cause)
		}
	}

	if cause == nil && code >= 200 && code < 300 {
		return nil
	}

	errorResponse, contentMessage := c.contentMessage(contentType, body)

	message := errorText(cause)
	if isDeserializationNoise(cause) {
		message = contentMessage
	}
	if strings.TrimSpace(message) == "" {
		message = contentMessage
	}

	return c.errorFactory(info, message, errorResponse, cause)
}

// contentMessage extracts a readable message from an error response body.
func (c *Client) contentMessage(contentType string, body []byte) (response.HasErrors, string) {
	if len(body) == 0 || contentType == "" {
		return nil, string(body)
	}

	mimeType, _ := response.ParseContentTypeHeader(contentType)
	switch {
	case serializer.Supports(c.serializer, mimeType):
		errorResponse := c.errorResponse()
		if err := c.serializer.Deserialize(body, errorResponse); err != nil {
			c.log.Debug("Failed to decode error response", zap.Error(err))
			return nil, string(body)
		}
		return errorResponse, response.ErrorMessage(errorResponse)
	case response.IsHTML(mimeType):
		return nil, response.ExtractHTMLText(body)
	case response.IsXML(mimeType):
		return nil, response.ExtractXMLText(body)
	}
	return nil, string(body)
}

// errorsCapability returns the errors-capability of a decoded result, checking the value and
// then its address.
func errorsCapability(result any) response.HasErrors {
	rv := reflect.ValueOf(result)
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		if h, ok := rv.Elem().Interface().(response.HasErrors); ok && !response.IsNil(h) {
			return h
		}
	}
	if h, ok := result.(response.HasErrors); ok && !response.IsNil(h) {
		return h
	}
	return nil
}

// isDeserializationNoise reports whether err only says that a body could not be parsed, which
// carries nothing useful for the caller.
func isDeserializationNoise(err error) bool {
	if err == nil {
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var xmlErr *xml.SyntaxError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &xmlErr) ||
		errors.Is(err, response.ErrUnexpectedContentType)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
