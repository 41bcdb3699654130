package version

// Version is set via build-time ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/sitemigrate/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the full version line shown by the CLI.
func String() string {
	return Version + " (" + GitCommit + ", " + BuildTime + ")"
}
