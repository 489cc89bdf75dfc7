// ABOUTME: Version information for the voice client
// ABOUTME: Product strings and the User-Agent sent on connect
package version

import (
	"fmt"
	"runtime"
)

const (
	Version      = "0.1.0"
	Product      = "Resonate Voice"
	Manufacturer = "Resonate"
)

// UserAgent identifies the client in the websocket handshake
func UserAgent() string {
	return fmt.Sprintf("resonate-voice/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}
