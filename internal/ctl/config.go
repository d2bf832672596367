package ctl

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// configSections is the display order of the daemon's config sections.
var configSections = []string{
	"data", "logging", "server", "simulation", "schedule",
	"geodesy", "catalog", "targets", "gpsd",
}

// Config fetches and displays the daemon's running configuration.
func Config(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	// Decode into a generic map to preserve all fields for both display modes.
	var raw json.RawMessage
	if err := getJSON(baseURL, "/api/config", &raw); err != nil {
		return err
	}

	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cfg)
	}

	fmt.Println()
	fmt.Println(header("  DAEMON CONFIGURATION"))
	fmt.Println(rule(50))

	section := func(name string) {
		fmt.Printf("\n  %s\n", colorize(bold, "["+name+"]"))
	}
	field := func(key string, val any) {
		fmt.Printf("    %s %v\n", padRight(colorize(dim, key+":"), 26), val)
	}

	for _, name := range configSections {
		fields, ok := cfg[name].(map[string]any)
		if !ok {
			continue
		}
		section(name)
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			field(k, fields[k])
		}
	}

	if sats, ok := cfg["satellites"].([]any); ok {
		section("satellites")
		for _, s := range sats {
			if m, ok := s.(map[string]any); ok {
				fmt.Printf("    %v\n", m["name"])
			}
		}
	}

	fmt.Println()
	return nil
}
