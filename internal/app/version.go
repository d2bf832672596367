package app

import (
	"runtime"
	"runtime/debug"
)

// Build-time variables set via -ldflags. For example:
//
//	go build -ldflags "-X github.com/large-farva/swath-planner/internal/app.Version=v1.0.0"
var (
	Version   = "dev"
	GoVersion = "unknown"
	BuiltAt   = "unknown"
)

type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuiltAt   string `json:"built_at"`
	Module    string `json:"module,omitempty"`
	Revision  string `json:"revision,omitempty"`
}

// buildVersion fills the gaps left by ldflags from the binary's embedded
// build information.
func buildVersion() versionInfo {
	v := versionInfo{Version: Version, GoVersion: GoVersion, BuiltAt: BuiltAt}
	if v.GoVersion == "unknown" {
		v.GoVersion = runtime.Version()
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	v.Module = bi.Main.Path
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Revision = s.Value
		case "vcs.time":
			if v.BuiltAt == "unknown" {
				v.BuiltAt = s.Value
			}
		}
	}
	return v
}
