// Package version holds build metadata injected via ldflags.
package version

// Name is the service name reported in logs and metrics.
const Name = "auditweb"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
