// authenticationhandler/token.go
package authenticationhandler

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the bearer token produced by the stock credentials.
type Token struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	ExpiresAt    time.Time
}

// ExpiresIn returns the remaining lifetime of the token. A token without a known
// expiry reports zero.
func (t Token) ExpiresIn() time.Duration {
	if t.ExpiresAt.IsZero() {
		return 0
	}
	return time.Until(t.ExpiresAt)
}

// Expired reports whether the token expires within the given buffer. Tokens without a
// known expiry never expire.
func (t Token) Expired(buffer time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(t.ExpiresAt) <= buffer
}

// BearerHeaders is the HeaderFunc for Token: it sets Authorization to "Bearer <token>".
func BearerHeaders(t Token) map[string]string {
	scheme := t.TokenType
	if scheme == "" || scheme == "bearer" {
		scheme = "Bearer"
	}
	return map[string]string{"Authorization": scheme + " " + t.AccessToken}
}

// ParseJWTExpiry reads the exp claim of a JWT without verifying its signature.
func ParseJWTExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
