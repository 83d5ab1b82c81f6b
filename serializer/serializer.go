// serializer.go
// Package serializer defines the body codec used by the API client and ships
// a JSON implementation along with wire types for dates, times and
// integer-encoded booleans.
package serializer

import (
	"strings"
)

// Serializer encodes request bodies and decodes response bodies. The client
// never assumes a concrete library, only this contract.
type Serializer interface {
	// ContentType is sent with serialized request bodies.
	ContentType() string
	// SupportedContentTypes lists the response MIME types Deserialize can read.
	// Entries starting with "*+" match structured syntax suffixes such as
	// application/problem+json.
	SupportedContentTypes() []string
	Serialize(v any) (string, error)
	Deserialize(data []byte, v any) error
}

// Supports reports whether s can decode a body of the given MIME type. Any
// parameters (such as charset) must already be stripped.
func Supports(s Serializer, mimeType string) bool {
	if s == nil || mimeType == "" {
		return false
	}
	mimeType = strings.ToLower(mimeType)
	for _, ct := range s.SupportedContentTypes() {
		ct = strings.ToLower(ct)
		if suffix, ok := strings.CutPrefix(ct, "*"); ok {
			if strings.HasSuffix(mimeType, suffix) {
				return true
			}
			continue
		}
		if ct == mimeType {
			return true
		}
	}
	return false
}
