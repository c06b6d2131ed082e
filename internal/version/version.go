// SPDX-License-Identifier: MIT

// Package version exposes build metadata for both binaries.
package version

import "fmt"

var (
	// Version is the current application version.
	// Populated by the build system via ldflags.
	Version = "v0.4.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns a single-line description suitable for --version output.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
