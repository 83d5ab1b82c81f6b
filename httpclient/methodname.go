// httpclient/methodname.go
package httpclient

import (
	"runtime"
	"strings"
)

// callerMethodName returns the name of the function skip frames above its caller, without
// package path, receiver or closure suffixes: "GetPeople" for
// "example.com/api.(*Client).GetPeople.func1".
func callerMethodName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return methodNameOf(fn.Name())
}

// methodNameOf reduces a runtime function name to the bare method name. The "[...]" the
// runtime puts after generic functions and receivers is removed first, so it cannot hide
// the name behind a dot.
func methodNameOf(fullName string) string {
	name := strings.ReplaceAll(strings.TrimSuffix(fullName, "-fm"), "[...]", "")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	parts := strings.Split(name, ".")
	for len(parts) > 1 && isClosureSuffix(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	return parts[len(parts)-1]
}

// isClosureSuffix matches the compiler-generated name parts of closures: func1, gowrap2, 3.
func isClosureSuffix(part string) bool {
	for _, prefix := range []string{"func", "gowrap", ""} {
		rest, ok := strings.CutPrefix(part, prefix)
		if ok && rest != "" && strings.Trim(rest, "0123456789") == "" {
			return true
		}
	}
	return false
}
