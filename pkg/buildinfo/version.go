// Package buildinfo reports the framecraft build.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/framecraft/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/framecraft/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/framecraft/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with `go install` fall back to the module version and VCS
// stamp recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build description served by the HTTP health check.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"built"`
}

var (
	once     sync.Once
	resolved Info
)

// Get returns the build description, filling unset ldflags values from the
// embedded module metadata when available.
func Get() Info {
	once.Do(func() {
		resolved = Info{Version: Version, Commit: Commit, Date: Date}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if resolved.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			resolved.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && resolved.Commit == "none":
				resolved.Commit = s.Value
			case s.Key == "vcs.time" && resolved.Date == "unknown":
				resolved.Date = s.Value
			}
		}
	})
	return resolved
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}

// UserAgent identifies framecraft in outgoing image fetches.
func UserAgent() string {
	return "framecraft/" + Get().Version
}
