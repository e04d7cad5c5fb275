// Package version holds build metadata for the staysearch binary.
package version

import "fmt"

// Overridden with -ldflags "-X .../internal/version.Version=..." in release builds.
//
//nolint:revive // ldflags targets
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the version line printed by `staysearch --version`.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
