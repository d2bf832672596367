package ctl

import (
	"fmt"
	"strings"
)

// ReloadOptions configures the reload command.
type ReloadOptions struct {
	Profile string
	JSON    bool
}

// Reload tells the daemon to re-read its config file from disk.
// If Profile is set, the daemon switches to that named profile.
func Reload(baseURL string, opts ReloadOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var body any
	if opts.Profile != "" {
		body = map[string]string{"profile": opts.Profile}
	}

	var r result
	if err := postJSON(baseURL, "/api/reload", body, &r); err != nil {
		return err
	}
	return printResult(r, "RELOADED", opts.JSON)
}

// Reset restores the daemon's session to the configured defaults and
// forgets the last run.
func Reset(baseURL string, jsonOutput bool) error {
	var r result
	if err := postJSON(baseURL, "/api/reset", nil, &r); err != nil {
		return err
	}
	return printResult(r, "RESET", jsonOutput)
}

// ConfigList lists the config profiles the daemon can switch to.
func ConfigList(baseURL string, jsonOutput bool) error {
	var resp struct {
		ConfigDir string `json:"config_dir"`
		Profiles  []struct {
			Name string `json:"name"`
			Path string `json:"path"`
		} `json:"profiles"`
	}
	if err := getJSON(baseURL, "/api/config/profiles", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  CONFIG PROFILES"))
	fmt.Printf("  %s %s\n", colorize(dim, "Directory:"), resp.ConfigDir)
	fmt.Println(rule(40))
	if len(resp.Profiles) == 0 {
		fmt.Println("  No profiles found.")
	}
	for _, p := range resp.Profiles {
		fmt.Printf("  %s  %s\n", padRight(p.Name, 16), colorize(dim, p.Path))
	}
	fmt.Println()
	return nil
}
