// Package version reports the build of the running binary
package version

import "runtime/debug"

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set via -ldflags "-X 'brickdump/internal/core/version.version=v0.1.0'
// -X 'brickdump/internal/core/version.commit=abcd' -X 'brickdump/internal/core/version.date=2025-08-24'"
var (
	version = "dev"
	commit  = ""
	date    = "unknown"
)

// readBuildInfo is a seam for tests
var readBuildInfo = debug.ReadBuildInfo

// Info returns the build information for service.
// Without an ldflags commit the vcs revision stamped by the go tool is used
func Info(service string) BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  Commit(),
		Date:    date,
	}
}

// Commit returns the short commit of the build or "unknown"
func Commit() string {
	if commit != "" {
		return short(commit)
	}
	if bi, ok := readBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return short(s.Value)
			}
		}
	}
	return "unknown"
}

func short(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
