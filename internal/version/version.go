// Package version carries build metadata set via -ldflags at release time.
package version

// Version is the released version string, or "dev" for local builds.
var Version = "dev"

// Commit is the VCS commit hash this binary was built from.
var Commit = "unknown"
