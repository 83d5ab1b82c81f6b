// headers/redact/redact.go
package redact

import "strings"

// Redacted replaces the value of a sensitive key.
const Redacted = "REDACTED"

// sensitiveKeys are compared case-insensitively.
var sensitiveKeys = map[string]bool{
	"accesstoken":         true,
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"client_secret":       true,
	"password":            true,
}

// IsSensitive reports whether values stored under key are redacted.
func IsSensitive(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData && IsSensitive(key) {
		return Redacted
	}
	return value
}
