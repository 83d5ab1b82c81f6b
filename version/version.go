// version.go
package version

import "fmt"

// AppName holds the name of the library
var AppName = "go-api-rest-client"

// Version holds the current version of the library
var Version = "0.1.0"

// GetAppName returns the name of the library
func GetAppName() string {
	return AppName
}

// GetVersion returns the current version of the library
func GetVersion() string {
	return Version
}

// GetClientName returns the value sent in the X-ApiClientName header when the
// client configuration does not name one.
func GetClientName() string {
	return fmt.Sprintf("%s v%s", AppName, Version)
}
