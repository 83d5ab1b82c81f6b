// httpclient/tracing.go
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/deploymenttheory/go-api-rest-client/headers"
	"github.com/deploymenttheory/go-api-rest-client/headers/redact"
	"github.com/deploymenttheory/go-api-rest-client/logger"
	"github.com/deploymenttheory/go-api-rest-client/params"
	"github.com/deploymenttheory/go-api-rest-client/response"
	"github.com/go-resty/resty/v2"
)

// traceBinaryLimit is the number of bytes of a binary body shown in traces.
const traceBinaryLimit = 256

// traceRequest is the resty pre-request hook: it traces the request as it goes on the wire.
func (c *Client) traceRequest(_ *resty.Client, hr *http.Request) error {
	if c.tracer == nil {
		return nil
	}

	req, _ := hr.Context().Value(requestKey{}).(*Request)
	if req != nil && req.MethodName() != "" {
		c.tracer("// %s", req.MethodName())
	}

	var body string
	if req != nil {
		body = c.formatRequestBody(req)
	}
	c.tracer("-> %s %s\n%s%s", hr.Method, hr.URL, c.formatHeaders(hr.Header), body)
	return nil
}

// traceResponse traces a response before its body is decoded.
func (c *Client) traceResponse(req *Request, resp *resty.Response, transportErr error) {
	if c.tracer == nil {
		return
	}

	code := statusCode(resp)
	result := "OK"
	if transportErr != nil || code < 200 || code > 299 {
		result = "ERROR"
	}

	var errorMessage string
	if transportErr != nil {
		errorMessage = "error message: " + transportErr.Error() + "\n"
	}

	var respHeaders http.Header
	var body string
	var elapsed string
	if resp != nil {
		respHeaders = resp.Header()
		body = formatBody(resp.Header().Get("Content-Type"), resp.Header().Get("Content-Disposition"), resp.Body())
		elapsed = resp.Time().String()
	}

	timings := "timings: {\n  started: " + req.startedAt.Format("2006-01-02 15:04:05")
	if elapsed != "" {
		timings += "\n  elapsed: " + elapsed
	}
	timings += "\n}\n"

	c.tracer("<- %s %d (%s) %s\n%s%s%s%s",
		result, code, http.StatusText(code), requestURL(c, req, resp),
		errorMessage,
		timings,
		c.formatHeaders(respHeaders),
		body,
	)
}

func (c *Client) formatHeaders(h http.Header) string {
	if len(h) == 0 {
		return "headers: none\n"
	}
	return "headers: " + headers.HeadersToString(headers.RedactHeaders(c.config.HideSensitiveData, h)) + "\n"
}

func (c *Client) formatRequestBody(req *Request) string {
	form := url.Values{}
	for _, p := range req.parameters {
		if p.Location == params.Body {
			form.Set(p.Name, redact.RedactSensitiveHeaderData(c.config.HideSensitiveData, p.Name, params.FormatValue(p.Value)))
		}
	}
	if len(form) > 0 && methodSendsBody(req.Method) {
		return "body: " + form.Encode() + "\n"
	}
	return formatBody(req.contentType, "", req.body)
}

// formatBody renders a body for traces: indented JSON, plain text, or a hex dump of the first
// bytes of binary content.
func formatBody(contentType, contentDisposition string, body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	if response.IsBinaryContent(contentType, contentDisposition) {
		return "body: binary data, " + formatBytes(body, traceBinaryLimit)
	}

	if strings.Contains(strings.ToLower(contentType), "json") {
		var indented bytes.Buffer
		if err := json.Indent(&indented, body, "", "  "); err == nil {
			return "body: " + indented.String() + "\n"
		}
	}

	return "body:\n" + string(body) + "\n"
}

// formatBytes hex-dumps up to limit bytes, 16 a line.
func formatBytes(data []byte, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d bytes: {", len(data))

	shown := data
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for i := 0; i < len(shown); i += 16 {
		end := min(i+16, len(shown))
		line := make([]string, 0, 16)
		for _, x := range shown[i:end] {
			line = append(line, fmt.Sprintf("%02x", x))
		}
		b.WriteString("\n  " + strings.Join(line, " "))
	}
	if len(data) > limit {
		b.WriteString("\n  ...")
	}
	b.WriteString("\n}\n")
	return b.String()
}

// restyLogger routes resty's own diagnostics to the client logger.
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	_ = l.log.Error(fmt.Sprintf(strings.TrimSpace(format), v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(fmt.Sprintf(strings.TrimSpace(format), v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(strings.TrimSpace(format), v...))
}
