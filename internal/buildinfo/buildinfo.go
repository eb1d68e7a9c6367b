package buildinfo

import (
	"fmt"
	"runtime"
)

// Info holds build information in a form suitable for JSON output.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build information of the running binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line human-readable version string, e.g.
// "uberrun 1.2.0 (commit: a1b2c3d, built: 2026-10-01T10:00:00Z, linux/amd64)".
func (i Info) String() string {
	s := fmt.Sprintf("uberrun %s (commit: %s, built: %s", i.Version, i.Commit, i.Date)
	if i.Platform != "" {
		s += ", " + i.Platform
	}
	return s + ")"
}
