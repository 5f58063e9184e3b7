// Package buildinfo holds version and build metadata stamped at
// compile time via ldflags, surfaced through the "-version" flag.
package buildinfo

import "fmt"

// These variables are set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	GitBranch = "unknown"
	BuildTime = "unknown"
)

// String returns a one-line summary for "-version" output.
func String() string {
	return fmt.Sprintf("qdisc %s (%s@%s) built %s", Version, GitCommit, GitBranch, BuildTime)
}
