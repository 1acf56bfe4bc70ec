// Package version records the build version reported by the CLI and the
// health endpoint.
package version

// Version is overridden at release time via
// -ldflags "-X github.com/audiotasks/audiotasks/internal/version.Version=...".
var Version = "0.1.0"
