// Package version holds build-time version metadata, set via -ldflags.
package version

import "fmt"

var (
	// Version is the semantic version (e.g. v0.1.0).
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// Date is the build date.
	Date = "unknown"

	// BuiltBy indicates who built the binary.
	BuiltBy = "unknown"
)

// Info returns a multi-line human-readable version summary.
func Info() string {
	return fmt.Sprintf("cflow %s\nCommit: %s\nBuilt: %s\nBuilt by: %s", Version, Commit, Date, BuiltBy)
}

// Short returns just the version string.
func Short() string {
	return Version
}
