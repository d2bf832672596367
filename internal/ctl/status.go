package ctl

import (
	"fmt"
	"strings"
	"time"
)

// StatusResponse mirrors the JSON returned by GET /api/status.
type StatusResponse struct {
	Name          string   `json:"name"`
	State         string   `json:"state"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	DataRoot      string   `json:"data_root"`
	Satellites    []string `json:"satellites"`
	Targets       int      `json:"targets"`
	CustomTargets bool     `json:"custom_targets"`
	Runs          int      `json:"runs"`
	WSClients     int      `json:"ws_clients"`
	Toggles       struct {
		ShowEdges       bool `json:"show_edges"`
		MergeDuplicates bool `json:"merge_duplicates"`
	} `json:"toggles"`
	Simulation struct {
		DurationMinutes int     `json:"duration_minutes"`
		StepSeconds     int     `json:"step_seconds"`
		SwathRadiusKM   float64 `json:"swath_radius_km"`
		Workers         int     `json:"workers"`
	} `json:"simulation"`
	LastRun *RunSummary `json:"last_run,omitempty"`
	Disk    *struct {
		TotalBytes     uint64 `json:"total_bytes"`
		UsedBytes      uint64 `json:"used_bytes"`
		AvailableBytes uint64 `json:"available_bytes"`
	} `json:"disk,omitempty"`
}

// Status fetches the daemon status and prints a formatted summary.
func Status(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", &s); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(s)
	}

	uptime := formatDuration(time.Duration(s.UptimeSeconds) * time.Second)
	stateStr := colorize(stateColor(s.State), s.State)

	targets := formatCount(s.Targets) + " built-in"
	if s.CustomTargets {
		targets = formatCount(s.Targets) + " custom"
	}

	fmt.Println()
	fmt.Println(header("  SWATH PLANNER STATUS"))
	fmt.Println(rule(44))
	fmt.Printf("  %-14s %s\n", colorize(dim, "Daemon:"), s.Name)
	fmt.Printf("  %-14s %s\n", colorize(dim, "State:"), stateStr)
	fmt.Printf("  %-14s %s\n", colorize(dim, "Uptime:"), uptime)
	fmt.Printf("  %-14s %s\n", colorize(dim, "Data:"), s.DataRoot)
	fmt.Printf("  %-14s %s\n", colorize(dim, "Host:"), baseURL)
	fmt.Printf("  %-14s %s\n", colorize(dim, "Satellites:"), strings.Join(s.Satellites, ", "))
	fmt.Printf("  %-14s %s\n", colorize(dim, "Targets:"), targets)
	fmt.Printf("  %-14s %d min, %d s step, %.0f km radius\n", colorize(dim, "Window:"),
		s.Simulation.DurationMinutes, s.Simulation.StepSeconds, s.Simulation.SwathRadiusKM)
	fmt.Printf("  %-14s edges=%t merge=%t\n", colorize(dim, "Toggles:"), s.Toggles.ShowEdges, s.Toggles.MergeDuplicates)
	fmt.Printf("  %-14s %s\n", colorize(dim, "Runs:"), formatCount(s.Runs))
	fmt.Printf("  %-14s %d\n", colorize(dim, "WS clients:"), s.WSClients)
	if s.Disk != nil {
		fmt.Printf("  %-14s %s of %s used\n", colorize(dim, "Disk:"),
			formatBytes(s.Disk.UsedBytes), formatBytes(s.Disk.TotalBytes))
	}

	if r := s.LastRun; r != nil {
		fmt.Println()
		fmt.Println(header("  LAST RUN"))
		fmt.Println(rule(44))
		fmt.Printf("  %-14s #%d from %s\n", colorize(dim, "Run:"), r.Run, formatClock(r.Start))
		fmt.Printf("  %-14s %s captures, %s coverage\n", colorize(dim, "Result:"),
			formatCount(r.TotalCaptures), formatPercent(r.CoverageRatio))
	}
	fmt.Println()

	return nil
}
