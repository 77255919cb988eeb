// Package version provides build-time version information for versync itself.
// These variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/jmgilman/versync/internal/version.Version=v1.0.0 \
//	                   -X github.com/jmgilman/versync/internal/version.Commit=abc123 \
//	                   -X github.com/jmgilman/versync/internal/version.Date=2025-01-01"
//
// This is unrelated to the application version that versync synchronizes.
package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit SHA of the build.
	Commit = "none"

	// Date is the build date in ISO 8601 format.
	Date = "unknown"
)

// String returns a one-line summary suitable for --version output.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
