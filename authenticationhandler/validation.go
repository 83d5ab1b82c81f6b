// authenticationhandler/validation.go

package authenticationhandler

import (
	"regexp"

	"github.com/google/uuid"
)

// Credential format rules checked before any token request is sent.
var (
	lowercasePattern = regexp.MustCompile(`[a-z]`)
	uppercasePattern = regexp.MustCompile(`[A-Z]`)
	digitPattern     = regexp.MustCompile(`\d`)
	usernamePattern  = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*()_\-\+=\[\]{\}\\|;:'",<.>/?]+$`)
)

const (
	minClientSecretLength = 16
	minPasswordLength     = 8
)

// IsValidClientID reports whether clientID is a UUID in its canonical 36 character form.
// The message explains a rejection.
func IsValidClientID(clientID string) (bool, string) {
	if len(clientID) == 36 {
		if _, err := uuid.Parse(clientID); err == nil {
			return true, ""
		}
	}
	return false, "Client ID is not a valid UUID format."
}

// IsValidClientSecret requires at least 16 characters mixing lower case, upper case and digits.
func IsValidClientSecret(clientSecret string) (bool, string) {
	switch {
	case len(clientSecret) < minClientSecretLength:
		return false, "Client secret must be at least 16 characters long."
	case !lowercasePattern.MatchString(clientSecret):
		return false, "Client secret must contain at least one lowercase letter."
	case !uppercasePattern.MatchString(clientSecret):
		return false, "Client secret must contain at least one uppercase letter."
	case !digitPattern.MatchString(clientSecret):
		return false, "Client secret must contain at least one digit."
	}
	return true, ""
}

// IsValidUsername accepts letters, digits and the punctuation allowed in basic auth user names.
// Whitespace and empty names are rejected.
func IsValidUsername(username string) (bool, string) {
	if usernamePattern.MatchString(username) {
		return true, ""
	}
	return false, "Username must contain only alphanumeric characters and password safe special characters (!@#$%^&*()_-+=[{]}\\|;:'\",<.>/?)."
}

// IsValidPassword requires at least 8 characters.
func IsValidPassword(password string) (bool, string) {
	if len(password) >= minPasswordLength {
		return true, ""
	}
	return false, "Password must be at least 8 characters long."
}
