// Package version carries build metadata stamped in at link time, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/tracksearch/internal/version.Version=v0.3.0"
package version

import "fmt"

// Overridden with -ldflags -X; the defaults mark an unstamped build.
var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	return fmt.Sprintf("%s (git %s, built %s)", Version, GitSHA, BuildTime)
}
