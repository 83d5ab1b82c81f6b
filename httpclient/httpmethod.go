// httpclient/httpmethod.go
package httpclient

/* Ref: https://www.rfc-editor.org/rfc/rfc7231#section-4.3

+---------+--------------+
| Method  | Request body |
+---------+--------------+
| DELETE  | yes          |
| GET     | no           |
| HEAD    | no           |
| OPTIONS | no           |
| PATCH   | yes          |
| POST    | yes          |
| PUT     | yes          |
+---------+--------------+
*/

import "net/http"

// methodSendsBody reports whether a request body is attached for the given HTTP method.
func methodSendsBody(method string) bool {
	methods := map[string]bool{
		http.MethodGet:     false,
		http.MethodHead:    false,
		http.MethodOptions: false,
		http.MethodPost:    true,
		http.MethodPut:     true,
		http.MethodPatch:   true,
		http.MethodDelete:  true,
	}

	return methods[method]
}
