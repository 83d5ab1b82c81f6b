// tracer.go
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Tracer returns a printf-style function writing each trace entry to l at debug level.
// It matches the tracer callback accepted by the API client.
func Tracer(l Logger) func(format string, args ...any) {
	return func(format string, args ...any) {
		l.Debug("HTTP trace", zap.String("trace", fmt.Sprintf(format, args...)))
	}
}
