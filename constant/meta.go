// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Ytplan is the canonical application identifier used for filesystem paths and CLI branding.
	Ytplan = "ytplan"

	// Version is the current application semantic version string.
	Version = "0.1.0"
)

// Build metadata, populated at link time via -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
