package ctl

import "fmt"

// Build-time variables set via -ldflags.
var (
	Version   = "dev"
	GoVersion = "unknown"
)

// VersionInfo prints the CLI version next to the daemon's, flagging a
// mismatch between the two.
func VersionInfo(baseURL string, jsonOutput bool) error {
	var daemon struct {
		Version   string `json:"version"`
		GoVersion string `json:"go_version"`
		BuiltAt   string `json:"built_at"`
		Module    string `json:"module,omitempty"`
	}
	daemonErr := getJSON(baseURL, "/api/version", &daemon)

	if jsonOutput {
		resp := map[string]any{
			"cli": map[string]any{"version": Version, "go_version": GoVersion},
		}
		if daemonErr == nil {
			resp["daemon"] = daemon
		} else {
			resp["daemon_error"] = daemonErr.Error()
		}
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  SWATH PLANNER VERSION"))
	fmt.Println(rule(38))
	fmt.Printf("  %-12s %s (%s)\n", colorize(dim, "CLI:"), Version, GoVersion)
	if daemonErr != nil {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Daemon:"), colorize(red, "unreachable: "+daemonErr.Error()))
		fmt.Println()
		return nil
	}

	fmt.Printf("  %-12s %s (%s)\n", colorize(dim, "Daemon:"), daemon.Version, daemon.GoVersion)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Built:"), daemon.BuiltAt)
	if daemon.Module != "" {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Module:"), daemon.Module)
	}
	if daemon.Version != Version {
		fmt.Printf("\n  %s CLI and daemon versions differ\n", colorize(yellow, "note:"))
	}
	fmt.Println()
	return nil
}
