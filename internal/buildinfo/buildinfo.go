// Package buildinfo exposes the version string reported by --version.
package buildinfo

import "runtime/debug"

// Version is overridden at release time via -ldflags.
var Version = "dev"

// String returns the best available version: the release version when set,
// otherwise whatever the module build info carries.
func String() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}
