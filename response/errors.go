// response/errors.go
package response

import (
	"reflect"
	"strings"
)

// HasErrors is implemented by response DTOs that can carry application-level
// errors. A response reporting errors is treated as a failure even when the
// HTTP status is successful.
type HasErrors interface {
	HasErrors() bool
	ErrorMessage() string
}

// Error is a single entry of a generic error response body.
type Error struct {
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the generic error body shape: {"errors": [{"message": ...}]}.
type ErrorResponse struct {
	Errors []Error `json:"errors"`
}

// HasErrors reports whether any error entries were received.
func (r *ErrorResponse) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// ErrorMessage joins the distinct, non-blank error messages with ". ".
func (r *ErrorResponse) ErrorMessage() string {
	if r == nil {
		return ""
	}
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		messages = append(messages, e.Message)
	}
	return JoinMessages(messages...)
}

// JoinMessages joins the distinct, non-blank messages with ". " keeping the
// order of first occurrence.
func JoinMessages(messages ...string) string {
	seen := make(map[string]struct{}, len(messages))
	kept := make([]string, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m) == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		kept = append(kept, m)
	}
	return strings.Join(kept, ". ")
}

// ErrorMessage returns the message of h, or an empty string when h is nil.
func ErrorMessage(h HasErrors) string {
	if IsNil(h) {
		return ""
	}
	return h.ErrorMessage()
}

// ReportsErrors reports whether h is non-nil and has errors.
func ReportsErrors(h HasErrors) bool {
	return !IsNil(h) && h.HasErrors()
}

// IsNil reports whether v is nil or an interface holding a nil pointer.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
