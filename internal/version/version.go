// Package version exposes build-time identification for the binary.
package version

import "fmt"

// Version is the release tag, set via ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/sourcebundle/internal/version.Version=v1.3.0".
var Version = "unknown"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the full build identification line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
