// response/parse.go
package response

import "strings"

// ParseContentTypeHeader parses the Content-Type header and returns the lower-cased
// MIME type and any parameters, e.g. "text/html; charset=UTF-8" yields "text/html"
// and {"charset": "UTF-8"}.
func ParseContentTypeHeader(header string) (string, map[string]string) {
	mimeType, params := parseHeader(header)
	return strings.ToLower(mimeType), params
}

// ParseContentDisposition parses the Content-Disposition header and returns the type and any parameters.
func ParseContentDisposition(header string) (string, map[string]string) {
	return parseHeader(header)
}

// IsBinaryContent checks if the MIME type or Content-Disposition indicates binary data
// that should not be rendered as text in traces.
func IsBinaryContent(contentType, contentDisposition string) bool {
	mimeType, _ := ParseContentTypeHeader(contentType)
	switch {
	case strings.HasPrefix(contentDisposition, "attachment"):
		return true
	case mimeType == "application/octet-stream", mimeType == "application/pdf", mimeType == "application/zip":
		return true
	case strings.HasPrefix(mimeType, "image/"), strings.HasPrefix(mimeType, "audio/"), strings.HasPrefix(mimeType, "video/"):
		return true
	}
	return false
}

// IsHTML reports whether the MIME type denotes an HTML document.
func IsHTML(mimeType string) bool {
	return strings.Contains(mimeType, "html")
}

// IsXML reports whether the MIME type denotes an XML document.
func IsXML(mimeType string) bool {
	return mimeType == "application/xml" || mimeType == "text/xml" || strings.HasSuffix(mimeType, "+xml")
}

// parseHeader generalizes the parsing of headers like Content-Type and Content-Disposition.
// It extracts the main value (e.g., MIME type for Content-Type) and any parameters (like charset).
func parseHeader(header string) (string, map[string]string) {
	parts := strings.SplitN(header, ";", 2)
	mainValue := strings.TrimSpace(parts[0])

	params := make(map[string]string)
	if len(parts) > 1 {
		for _, part := range strings.Split(parts[1], ";") {
			kv := strings.SplitN(part, "=", 2)
			if len(kv) == 2 {
				params[strings.TrimSpace(kv[0])] = strings.Trim(strings.TrimSpace(kv[1]), "\"")
			}
		}
	}

	return mainValue, params
}
