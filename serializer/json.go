package serializer

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateTimeLayout is the ISO 8601 layout with a numeric zone offset used for
// timestamps on the wire, e.g. 2022-12-31T00:00:00+00:00.
const DateTimeLayout = "2006-01-02T15:04:05-07:00"

var jsonContentTypes = []string{
	"application/json", "text/json", "text/x-json", "text/javascript", "*+json",
}

// JSON is the default Serializer, backed by encoding/json.
type JSON struct {
	contentType string
}

// NewJSON returns a JSON serializer sending "application/json".
func NewJSON() *JSON {
	return &JSON{contentType: "application/json"}
}

// ContentType returns the content type of serialized bodies.
func (j *JSON) ContentType() string {
	if j.contentType == "" {
		return "application/json"
	}
	return j.contentType
}

// SupportedContentTypes returns the MIME types this serializer reads.
func (j *JSON) SupportedContentTypes() []string {
	return jsonContentTypes
}

// Serialize encodes v as JSON. Bare time.Time values use DateTimeLayout; nested
// timestamps should use the DateTime wire type to get the same format.
func (j *JSON) Serialize(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return `"` + t.Format(DateTimeLayout) + `"`, nil
	case *time.Time:
		if t == nil {
			return "null", nil
		}
		return `"` + t.Format(DateTimeLayout) + `"`, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Deserialize decodes data into v. A blank body leaves v untouched.
func (j *JSON) Deserialize(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
