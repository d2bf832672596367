package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ProfileInfo describes a named configuration file in the config directory.
type ProfileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// DefaultConfigDir is where swathd looks for named profiles. It can be
// overridden with SWATH_CONFIG_DIR.
func DefaultConfigDir() string {
	if dir := os.Getenv("SWATH_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/swath-planner"
}

// ListProfiles returns every *.toml file in dir, sorted by name. A missing
// directory yields no profiles rather than an error.
func ListProfiles(dir string) ([]ProfileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, err
	}

	profiles := make([]ProfileInfo, 0, len(matches))
	for _, m := range matches {
		profiles = append(profiles, ProfileInfo{
			Name: strings.TrimSuffix(filepath.Base(m), ".toml"),
			Path: m,
		})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

// ProfilePath resolves a profile name to its file in dir.
func ProfilePath(dir, name string) string {
	return filepath.Join(dir, name+".toml")
}
