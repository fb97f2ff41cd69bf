// Package version carries build metadata stamped in by the linker.
package version

import "runtime"

var (
	Version   = "dev"     // ex: v0.1.0, set via -ldflags
	Commit    = "none"    // ex: abcd123
	BuildDate = "unknown" // ex: 2026-08-31T18:42:00Z
	GoVersion = runtime.Version()
)

// UserAgent identifies the gateway on calls to the upstream marketplace API.
func UserAgent() string {
	return "bazar-gateway/" + Version
}
