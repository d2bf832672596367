package ctl

import (
	"fmt"
	"strconv"
)

type targetRow struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Targets lists the targets the next run will use.
func Targets(baseURL string, jsonOutput bool) error {
	var resp struct {
		Targets []targetRow `json:"targets"`
		Custom  bool        `json:"custom"`
	}
	if err := getJSON(baseURL, "/api/targets", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	title := "  TARGETS (built-in)"
	if resp.Custom {
		title = "  TARGETS (custom)"
	}
	fmt.Println()
	fmt.Println(header(title))

	t := newTable("  ", "#", "Name", "Position")
	t.alignRight(0)
	for i, tg := range resp.Targets {
		t.row(strconv.Itoa(i), tg.Name, formatCoord(tg.Lat, tg.Lon))
	}
	t.flush()
	fmt.Println()
	return nil
}

// TargetAddOptions configures the target-add command.
type TargetAddOptions struct {
	Name string
	Lat  float64
	Lon  float64
	GPSD bool
	JSON bool
}

// TargetAdd adds a custom target, either at a given position or at the
// daemon's current gpsd fix.
func TargetAdd(baseURL string, opts TargetAddOptions) error {
	var body any = targetRow{Name: opts.Name, Lat: opts.Lat, Lon: opts.Lon}
	if opts.GPSD {
		body = map[string]any{"gpsd": true, "name": opts.Name}
	}

	var resp struct {
		OK      bool        `json:"ok"`
		Added   []targetRow `json:"added"`
		Targets int         `json:"targets"`
	}
	if err := postJSON(baseURL, "/api/targets", body, &resp); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(resp)
	}
	for _, a := range resp.Added {
		fmt.Printf("\n  %s  %s %s\n", colorize(green, "ADDED"), a.Name, formatCoord(a.Lat, a.Lon))
	}
	fmt.Printf("  %s\n\n", colorize(dim, formatCount(resp.Targets)+" custom targets"))
	return nil
}

// TargetsClear drops the custom targets so the built-in list applies again.
func TargetsClear(baseURL string, jsonOutput bool) error {
	var r result
	if err := deleteJSON(baseURL, "/api/targets", &r); err != nil {
		return err
	}
	return printResult(r, "CLEARED", jsonOutput)
}
