// headers/headers.go
package headers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-api-rest-client/headers/redact"
	"github.com/deploymenttheory/go-api-rest-client/logger"
	"go.uber.org/zap"
)

// RedactHeaders returns a copy of headers with sensitive values replaced when
// hideSensitiveData is set.
func RedactHeaders(hideSensitiveData bool, headers http.Header) http.Header {
	redacted := make(http.Header, len(headers))
	for name, values := range headers {
		copied := make([]string, len(values))
		for i, v := range values {
			copied[i] = redact.RedactSensitiveHeaderData(hideSensitiveData, name, v)
		}
		redacted[name] = copied
	}
	return redacted
}

// HeadersToString renders headers as "{Name: value, Other: a, b}" sorted by name,
// with multiple values joined by a comma as per the HTTP standard.
func HeadersToString(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	headerStrings := make([]string, 0, len(names))
	for _, name := range names {
		headerStrings = append(headerStrings, name+": "+strings.Join(headers[name], ", "))
	}
	return "{" + strings.Join(headerStrings, ", ") + "}"
}

// LogHeaders writes the redacted headers at debug level.
func LogHeaders(log logger.Logger, message string, headers http.Header, hideSensitiveData bool) {
	if log.GetLogLevel() <= logger.LogLevelDebug {
		log.Debug(message, zap.String("Headers", HeadersToString(RedactHeaders(hideSensitiveData, headers))))
	}
}

// CheckDeprecationHeader logs a warning when a response carries a Deprecation header.
func CheckDeprecationHeader(headers http.Header, endpoint string, log logger.Logger) {
	deprecationHeader := headers.Get("Deprecation")
	if deprecationHeader != "" {
		log.Warn("API endpoint is deprecated",
			zap.String("Date", deprecationHeader),
			zap.String("Endpoint", endpoint),
		)
	}
}
