// Package version reports the sonoslink build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/sonoslink/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/sonoslink/internal/version.Commit=abc1234"
//
// Unset values are filled from the module's VCS build info, then fall back
// to "dev" and "unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			fromBuildInfo(info)
		}
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills Version and Commit from VCS stamps
func fromBuildInfo(info *debug.BuildInfo) {
	var revision, vcsTime string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			vcsTime = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if Commit == "" && revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		Commit = revision
		if dirty {
			Commit += "-dirty"
		}
	}

	if Version == "" {
		switch {
		case info.Main.Version != "" && info.Main.Version != "(devel)":
			Version = info.Main.Version
		case len(vcsTime) >= 10:
			Version = "dev-" + vcsTime[:10]
		}
	}
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s, %s)", Version, Commit, runtime.Version())
}

// UserAgent is sent with every SOAP request
func UserAgent() string {
	return fmt.Sprintf("sonoslink/%s (%s/%s) UPnP/1.0", Version, runtime.GOOS, runtime.GOARCH)
}
