package meta

var (
	// Version is the release version, injected at build time via ldflags.
	Version = "HEAD"

	// Commit is the git commit hash, injected at build time via ldflags.
	Commit = "UNKNOWN"
)
