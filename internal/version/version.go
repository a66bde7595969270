// Package version exposes build metadata stamped in via -ldflags.
package version

// Set at build time with -ldflags "-X github.com/sydlexius/brainzmatch/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
)
