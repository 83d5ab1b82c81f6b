// Package params maps the fields of plain data objects onto HTTP request
// parameters: query string entries, URL segments, headers, cookies and form
// fields.
package params

import (
	"fmt"
	"strconv"
)

// Location is where a mapped parameter is attached on the request.
type Location int

const (
	// Query adds the parameter to the query string.
	Query Location = iota
	// URLSegment substitutes a {name} placeholder in the request path.
	URLSegment
	// Header adds a request header.
	Header
	// Cookie adds a request cookie.
	Cookie
	// Body adds a form field to the request body.
	Body
)

// String returns the location name.
func (l Location) String() string {
	switch l {
	case Query:
		return "Query"
	case URLSegment:
		return "URLSegment"
	case Header:
		return "Header"
	case Cookie:
		return "Cookie"
	case Body:
		return "Body"
	}
	return fmt.Sprintf("Location(%d)", int(l))
}

// Target receives mapped parameters. Implementations decide how duplicates
// are resolved; the API client request keeps the last value written.
type Target interface {
	AddParameter(name string, value any, loc Location)
}

// FormatValue renders a mapped parameter value as it travels on the wire.
// Nil becomes an empty string.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
