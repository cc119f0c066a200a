// Package version provides build-time version information for decodechain.
//
// Version, Commit, and Date are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/decodechain/internal/version.Version=x.y.z \
//	                   -X github.com/jmylchreest/decodechain/internal/version.Commit=$(git rev-parse HEAD) \
//	                   -X github.com/jmylchreest/decodechain/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build-time variables injected via ldflags.
var (
	// Version is the semantic version, "dev" for local builds.
	Version = "dev"

	// Commit is the full git commit SHA.
	Commit = "unknown"

	// Date is the build timestamp in RFC3339 format.
	Date = "unknown"
)

// ApplicationName is the canonical name of this application.
const ApplicationName = "decodechain"

// Info contains structured version information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
	// Backends lists the element registry backends compiled in.
	Backends []string `json:"backends,omitempty" yaml:"backends,omitempty"`
}

// GetInfo returns all version information as a structured type.
func GetInfo(backends ...string) Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Backends:  backends,
	}
}

func shortCommit() (string, bool) {
	if Commit != "unknown" && len(Commit) >= 8 {
		return Commit[:8], true
	}
	return "", false
}

// String returns a human-readable version string.
func String() string {
	info := GetInfo()
	if c, ok := shortCommit(); ok {
		return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s, %s)",
			ApplicationName, info.Version, c, info.Date, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("%s version %s (%s, %s)", ApplicationName, info.Version, info.GoVersion, info.Platform)
}

// Short returns a short version string suitable for CLI --version output.
// Cobra prefixes the command name itself.
func Short() string {
	if c, ok := shortCommit(); ok {
		return fmt.Sprintf("%s (%s)", Version, c)
	}
	return Version
}

// IsRelease returns true if this is a tagged release build.
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "-SNAPSHOT")
}
