// Package misc keeps build time information.
package misc

import (
	"runtime/debug"
)

// set by linker
var (
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name to be used in logs and file names.
func GetAppName() string {
	return "storyexp"
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit program was built from, falls back on
// information embedded by go toolchain.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
