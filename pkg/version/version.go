// Package version reports the build version of plugin-update-check.
package version

import "runtime/debug"

const name = "homebridge-plugin-update-check"

// Set with -ldflags "-X github.com/Sunoo/homebridge-plugin-update-check/pkg/version.version=...".
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// GetVersion returns the release version. Builds without ldflags fall back to
// the module version recorded by go install.
func GetVersion() string {
	if version != "dev" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return version
}

// GetFullVersion returns version with build ID
func GetFullVersion() string {
	return GetVersion() + " (build: " + buildID + ")"
}

// UserAgent identifies this process to the management API and NATS.
func UserAgent() string {
	return name + "/" + GetVersion()
}
