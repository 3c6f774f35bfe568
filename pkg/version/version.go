// Package version holds build information injected with -ldflags.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// HeaderServerVersion carries the server build version on API responses.
const HeaderServerVersion = "X-Recordlist-Version"

//nolint:gochecknoglobals // Set at build time via -ldflags "-X".
var (
	// Version is the release version.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
	// BuildDate is the UTC build timestamp.
	BuildDate = "unknown"
)

// GetVersion returns the release version.
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with commit and build date.
func GetFullVersion() string {
	return Version + " (commit " + Commit + ", built " + BuildDate + ")"
}

// IsRelease reports whether v is a semantic version rather than a dev build.
func IsRelease(v string) bool {
	_, err := semver.NewVersion(v)
	return err == nil
}

// Compatible reports whether a client built as local can use a server built
// as remote. Major versions must match; below 1.0 the minor must match too.
// Dev builds are compatible with everything.
func Compatible(local, remote string) (bool, error) {
	if !IsRelease(local) || !IsRelease(remote) {
		return true, nil
	}
	l, err := semver.NewVersion(local)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", local, err)
	}
	r, err := semver.NewVersion(remote)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", remote, err)
	}
	if l.Major() != r.Major() {
		return false, nil
	}
	if l.Major() == 0 && l.Minor() != r.Minor() {
		return false, nil
	}
	return true, nil
}
