// httpclient/request.go
package httpclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/deploymenttheory/go-api-rest-client/enums"
	"github.com/deploymenttheory/go-api-rest-client/params"
	"github.com/deploymenttheory/go-api-rest-client/response"
	"github.com/deploymenttheory/go-api-rest-client/serializer"
)

// Format is the declared body format of a request.
type Format int

const (
	// FormatJSON sends string bodies as application/json.
	FormatJSON Format = iota
	// FormatXML sends string bodies as application/xml.
	FormatXML
	// FormatText sends string bodies as text/plain.
	FormatText
)

// ContentType returns the content type used for string bodies of this format.
func (f Format) ContentType() string {
	switch f {
	case FormatXML:
		return "application/xml"
	case FormatText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Parameter is a request parameter at its location.
type Parameter struct {
	Name     string
	Value    any
	Location params.Location
}

type parameterKey struct {
	location params.Location
	name     string
}

// Request is a request being built. The configure callback of the verbs receives it to add
// parameters before the request is sent. A Request is not safe for concurrent use.
type Request struct {
	Method string
	Path   string

	format      Format
	enumMode    enums.Mode
	methodName  string
	mapper      *params.Mapper
	parameters  []Parameter
	index       map[parameterKey]int
	body        []byte
	contentType string
	username    string
	password    string
	basicAuth   bool
	startedAt   time.Time
	err         error
}

// NewRequest creates a request for method and path. Parameters added to it are mapped with mapper,
// or with params.Default when mapper is nil.
func NewRequest(method, path string, mapper *params.Mapper) *Request {
	if mapper == nil {
		mapper = params.Default
	}
	return &Request{
		Method: method,
		Path:   path,
		mapper: mapper,
		index:  make(map[parameterKey]int),
	}
}

// AddParameter adds or overwrites the parameter name at loc. Header names compare
// case-insensitively. AddParameter implements params.Target.
func (r *Request) AddParameter(name string, value any, loc params.Location) {
	key := parameterKey{location: loc, name: name}
	if loc == params.Header {
		key.name = strings.ToLower(name)
	}
	if i, ok := r.index[key]; ok {
		r.parameters[i] = Parameter{Name: name, Value: value, Location: loc}
		return
	}
	r.index[key] = len(r.parameters)
	r.parameters = append(r.parameters, Parameter{Name: name, Value: value, Location: loc})
}

// AddParameters maps the eligible fields of obj to parameters at loc using the request enum mode.
// A mapping failure is kept and reported by Err and by the call executing the request.
func (r *Request) AddParameters(obj any, loc params.Location) *Request {
	if err := r.mapper.Apply(r, obj, loc, r.enumMode); err != nil && r.err == nil {
		r.err = err
	}
	return r
}

// AddQueryString maps the fields of obj to query string parameters.
func (r *Request) AddQueryString(obj any) *Request {
	return r.AddParameters(obj, params.Query)
}

// AddURLSegment substitutes the {name} placeholder of the path.
func (r *Request) AddURLSegment(name string, value any) *Request {
	r.AddParameter(name, value, params.URLSegment)
	return r
}

// AddHeader sets a request header.
func (r *Request) AddHeader(name string, value any) *Request {
	r.AddParameter(name, value, params.Header)
	return r
}

// AddCookie sets a request cookie.
func (r *Request) AddCookie(name string, value any) *Request {
	r.AddParameter(name, value, params.Cookie)
	return r
}

// AddFormField adds a form field. A request with form fields sends them as
// application/x-www-form-urlencoded instead of its body.
func (r *Request) AddFormField(name string, value any) *Request {
	r.AddParameter(name, value, params.Body)
	return r
}

// SetBasicAuth sends the credentials with HTTP basic authentication.
func (r *Request) SetBasicAuth(username, password string) *Request {
	r.username, r.password, r.basicAuth = username, password, true
	return r
}

// SetEnumMode sets the enum serialization mode of the parameters added after this call.
func (r *Request) SetEnumMode(mode enums.Mode) *Request {
	r.enumMode = mode
	return r
}

// EnumMode returns the enum serialization mode of the request.
func (r *Request) EnumMode() enums.Mode {
	return r.enumMode
}

// SetFormat sets the declared body format.
func (r *Request) SetFormat(format Format) *Request {
	r.format = format
	return r
}

// Format returns the declared body format.
func (r *Request) Format() Format {
	return r.format
}

// SetMethodName overrides the API method name sent in the X-ApiMethodName header.
func (r *Request) SetMethodName(name string) *Request {
	r.methodName = name
	return r
}

// MethodName returns the API method name of the request.
func (r *Request) MethodName() string {
	return r.methodName
}

// SetBody replaces the request body.
func (r *Request) SetBody(body []byte, contentType string) *Request {
	r.body = body
	r.contentType = contentType
	return r
}

// Body returns the serialized body and its content type.
func (r *Request) Body() ([]byte, string) {
	return r.body, r.contentType
}

// Parameters returns the parameters in the order they were first added.
func (r *Request) Parameters() []Parameter {
	out := make([]Parameter, len(r.parameters))
	copy(out, r.parameters)
	return out
}

// Parameter returns the value of the parameter name at loc.
func (r *Request) Parameter(name string, loc params.Location) (any, bool) {
	key := parameterKey{location: loc, name: name}
	if loc == params.Header {
		key.name = strings.ToLower(name)
	}
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.parameters[i].Value, true
}

// Err returns the first parameter mapping error.
func (r *Request) Err() error {
	return r.err
}

func (r *Request) attachBody(s serializer.Serializer, body any) error {
	if response.IsNil(body) || !methodSendsBody(r.Method) {
		return nil
	}

	switch b := body.(type) {
	case string:
		r.SetBody([]byte(b), r.format.ContentType())
	case []byte:
		r.SetBody(b, "application/octet-stream")
	default:
		text, err := s.Serialize(body)
		if err != nil {
			return fmt.Errorf("failed to serialize request body: %w", err)
		}
		r.SetBody([]byte(text), s.ContentType())
	}
	return nil
}
