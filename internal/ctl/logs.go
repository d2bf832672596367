package ctl

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// LogsOptions configures the logs command.
type LogsOptions struct {
	Level     string
	Component string
	Limit     int
	Tail      bool
	JSON      bool
}

type logRow struct {
	TS        string `json:"ts"`
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// Logs shows recent daemon log messages, or streams them live with Tail.
func Logs(baseURL string, opts LogsOptions) error {
	if opts.Tail {
		return Watch(baseURL, WatchOptions{Filter: []string{"log"}, JSON: opts.JSON})
	}

	params := url.Values{}
	if opts.Level != "" {
		params.Set("level", opts.Level)
	}
	// The component filter runs here, so the limit is applied after it.
	if opts.Limit > 0 && opts.Component == "" {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/api/logs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp struct {
		Logs []logRow `json:"logs"`
	}
	if err := getJSON(baseURL, path, &resp); err != nil {
		return err
	}
	resp.Logs = filterLogs(resp.Logs, opts.Component, opts.Limit)

	if opts.JSON {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  DAEMON LOGS"))
	fmt.Println(rule(70))

	if len(resp.Logs) == 0 {
		fmt.Println("  No log entries found.")
	}
	for _, e := range resp.Logs {
		ts := e.TS
		if t, err := time.Parse(time.RFC3339Nano, e.TS); err == nil {
			ts = t.Local().Format("15:04:05")
		}
		src := ""
		if e.Component != "" {
			src = colorize(dim, "["+e.Component+"] ")
		}
		fmt.Printf("  %s %s  %s%s\n", ts, formatLogLevel(e.Level), src, e.Message)
	}

	fmt.Println()
	return nil
}

// filterLogs keeps entries from component (all when empty) and then the
// newest limit of those.
func filterLogs(logs []logRow, component string, limit int) []logRow {
	if component != "" {
		kept := make([]logRow, 0, len(logs))
		for _, e := range logs {
			if e.Component == component {
				kept = append(kept, e)
			}
		}
		logs = kept
	}
	if limit > 0 && limit < len(logs) {
		logs = logs[len(logs)-limit:]
	}
	return logs
}
