// Package build holds build-time version information injected via ldflags.
package build

var (
	// Version is the semantic version of the binary, set at build time.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)
