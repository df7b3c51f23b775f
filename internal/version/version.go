package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version of the build, set via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA, set via ldflags or read from the embedded VCS info.
	Commit = ""
	// BuildTime is the UTC build timestamp, set via ldflags or read from the embedded VCS info.
	BuildTime = ""
)

// shortCommitLength matches `git rev-parse --short`.
const shortCommitLength = 7

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version with commit, build time and platform.
func Full() string {
	commit, built := Commit, BuildTime

	if commit == "" || built == "" {
		vcsCommit, vcsTime, modified := vcsInfo()

		if commit == "" {
			commit = vcsCommit
			if modified {
				commit += "-dirty"
			}
		}

		if built == "" {
			built = vcsTime
		}
	}

	return fmt.Sprintf("version: %s, commit: %s, built at: %s, %s %s/%s",
		Version, orUnknown(commit), orUnknown(built), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// vcsInfo reads the revision stamped by `go build` in a git checkout.
func vcsInfo() (commit, at string, modified bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value[:min(len(s.Value), shortCommitLength)]
		case "vcs.time":
			at = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	return commit, at, modified
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
