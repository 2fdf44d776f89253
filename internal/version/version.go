package version

import "fmt"

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/docmd/internal/version.Version=v0.3.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line printed by `docmd --version`.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return "docmd " + Version
	}
	return fmt.Sprintf("docmd %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
