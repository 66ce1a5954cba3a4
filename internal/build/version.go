package build

// Set through -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

const appName = "magnet-resolver"

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// DefaultUserAgent is sent with every page fetch unless overridden.
func DefaultUserAgent() string {
	return appName + "/" + Version
}

// Summary is the one-line output of the version command.
func Summary() string {
	return appName + " " + FullVersion() + " (built " + BuildTime + ")"
}
