// Package version reports which frogfind build is running.
//
// Release builds stamp the variables below with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/frogfind/internal/version.Version=1.0.0 ..."
//
// Builds without ldflags (go install, go run) fall back to the VCS details
// the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

// Set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	Dirty     = "false"
	BuildDate = "unknown"
)

// Info is the structured form printed by `frogfind version --format json`.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Dirty     bool   `json:"dirty" yaml:"dirty"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

var (
	resolveOnce sync.Once
	resolved    Info
)

// Get returns the build information, preferring ldflags values over the
// toolchain's embedded VCS stamp.
func Get() Info {
	resolveOnce.Do(func() {
		var settings []debug.BuildSetting
		if bi, ok := debug.ReadBuildInfo(); ok {
			settings = bi.Settings
		}
		resolved = resolve(settings)
	})
	return resolved
}

func resolve(settings []debug.BuildSetting) Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
				if len(info.Commit) > 12 {
					info.Commit = info.Commit[:12]
				}
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			if Dirty == "false" && s.Value == "true" {
				info.Dirty = true
			}
		}
	}
	return info
}

// UserAgent returns the product token frogfind sends with its own requests.
func UserAgent() string {
	return "FrogFind/" + String()
}

// String returns the version, suffixed with -dirty for modified trees.
func String() string {
	info := Get()
	if info.Dirty {
		return info.Version + "-dirty"
	}
	return info.Version
}

// Full returns the multi-line form printed by `frogfind version`.
func Full() string {
	info := Get()
	rows := [][2]string{
		{"Commit", info.Commit},
		{"Built", info.BuildDate},
		{"Go version", info.GoVersion},
		{"OS/Arch", info.Platform},
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "frogfind %s", String())
	for _, row := range rows {
		fmt.Fprintf(&sb, "\n  %-11s %s", row[0]+":", row[1])
	}
	return sb.String()
}
