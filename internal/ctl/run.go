package ctl

import (
	"fmt"
	"net/url"
	"strings"
)

// RunSummary mirrors the run summary in POST /api/run and GET /api/status.
type RunSummary struct {
	Run             int     `json:"run"`
	Start           string  `json:"start"`
	FinishedAt      string  `json:"finished_at"`
	DurationMinutes int     `json:"duration_minutes"`
	StepSeconds     int     `json:"step_seconds"`
	SwathRadiusKM   float64 `json:"swath_radius_km"`
	Satellites      []struct {
		Name     string `json:"name"`
		Points   int    `json:"points"`
		Captures int    `json:"captures"`
	} `json:"satellites"`
	TotalCaptures int `json:"total_captures"`
	Coverage      struct {
		Total    int   `json:"total"`
		Captured []int `json:"captured"`
		Missed   []int `json:"missed"`
	} `json:"coverage"`
	CoverageRatio float64 `json:"coverage_ratio"`
}

// CaptureRow is one capture as returned by the run and captures endpoints.
type CaptureRow struct {
	Satellite string `json:"satellite"`
	Target    struct {
		Name string  `json:"name"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
	} `json:"target"`
	Index int    `json:"index"`
	Time  string `json:"time"`
}

// RunOptions are the per-run overrides sent to POST /api/run. Zero values
// leave the daemon's configured parameters in place.
type RunOptions struct {
	Start           string
	DurationMinutes int
	StepSeconds     int
	SwathRadiusKM   float64
	NoEdges         bool
	Merge           bool
	JSON            bool
}

func (o RunOptions) body() map[string]any {
	body := map[string]any{}
	if o.Start != "" {
		body["start"] = o.Start
	}
	if o.DurationMinutes > 0 {
		body["duration_minutes"] = o.DurationMinutes
	}
	if o.StepSeconds > 0 {
		body["step_seconds"] = o.StepSeconds
	}
	if o.SwathRadiusKM > 0 {
		body["swath_radius_km"] = o.SwathRadiusKM
	}
	if o.NoEdges {
		body["show_edges"] = false
	}
	if o.Merge {
		body["merge_duplicates"] = true
	}
	return body
}

// Run asks the daemon to plan a new run and prints the schedule.
func Run(baseURL string, opts RunOptions) error {
	var resp struct {
		RunSummary
		Captures []CaptureRow `json:"captures"`
	}
	if err := doJSON(runClient, "POST", baseURL, "/api/run", opts.body(), &resp); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(resp)
	}

	s := resp.RunSummary
	fmt.Println()
	fmt.Println(header(fmt.Sprintf("  RUN #%d", s.Run)))
	fmt.Println(rule(60))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Start:"), formatClock(s.Start))
	fmt.Printf("  %-12s %d min at %d s, %.0f km swath radius\n", colorize(dim, "Window:"),
		s.DurationMinutes, s.StepSeconds, s.SwathRadiusKM)
	fmt.Printf("  %-12s %d of %d targets (%s)\n", colorize(dim, "Coverage:"),
		len(s.Coverage.Captured), s.Coverage.Total, formatPercent(s.CoverageRatio))
	fmt.Println()

	t := newTable("  ", "Satellite", "Points", "Captures")
	t.alignRight(1, 2)
	for _, sat := range s.Satellites {
		t.row(colorize(bold, sat.Name), formatCount(sat.Points), formatCount(sat.Captures))
	}
	t.flush()

	if len(resp.Captures) > 0 {
		fmt.Println()
		printCaptures(resp.Captures)
	}
	fmt.Println()
	return nil
}

// CapturesOptions configures the captures command.
type CapturesOptions struct {
	Satellite string
	JSON      bool
}

// Captures prints the capture schedule of the last run.
func Captures(baseURL string, opts CapturesOptions) error {
	path := "/api/captures"
	if opts.Satellite != "" {
		path += "?satellite=" + url.QueryEscape(opts.Satellite)
	}

	var resp struct {
		Run      int          `json:"run"`
		Captures []CaptureRow `json:"captures"`
	}
	if err := getJSON(baseURL, path, &resp); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header(fmt.Sprintf("  CAPTURES (run #%d)", resp.Run)))
	if len(resp.Captures) == 0 {
		fmt.Println(rule(24))
		fmt.Println("  No targets captured.")
	} else {
		printCaptures(resp.Captures)
	}
	fmt.Println()
	return nil
}

func printCaptures(caps []CaptureRow) {
	t := newTable("  ", "Time (UTC)", "Satellite", "Target", "Position")
	for _, c := range caps {
		name := c.Target.Name
		if name == "" {
			name = fmt.Sprintf("#%d", c.Index)
		}
		t.row(formatClock(c.Time), c.Satellite, name, formatCoord(c.Target.Lat, c.Target.Lon))
	}
	t.flush()
}

// TrackOptions configures the track command.
type TrackOptions struct {
	Satellite string
	Every     int
	JSON      bool
}

// Track prints the ground track and swath edges of one satellite in the
// last run. Every thins the output to one row per N points.
func Track(baseURL string, opts TrackOptions) error {
	path := "/api/track"
	if opts.Satellite != "" {
		path += "?satellite=" + url.QueryEscape(opts.Satellite)
	}

	type point struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	var resp struct {
		Run       int    `json:"run"`
		Satellite string `json:"satellite"`
		Path      []struct {
			Time string  `json:"time"`
			Lat  float64 `json:"lat"`
			Lon  float64 `json:"lon"`
		} `json:"path"`
		Left  []point `json:"left"`
		Right []point `json:"right"`
	}
	if err := getJSON(baseURL, path, &resp); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(resp)
	}

	every := opts.Every
	if every < 1 {
		every = 1
	}
	edges := len(resp.Left) == len(resp.Path) && len(resp.Right) == len(resp.Path)

	fmt.Println()
	fmt.Println(header(fmt.Sprintf("  GROUND TRACK %s (run #%d)", strings.ToUpper(resp.Satellite), resp.Run)))

	cols := []string{"Time (UTC)", "Subpoint"}
	if edges {
		cols = append(cols, "Left edge", "Right edge")
	}
	t := newTable("  ", cols...)
	for i := 0; i < len(resp.Path); i += every {
		p := resp.Path[i]
		row := []string{formatClock(p.Time), formatCoord(p.Lat, p.Lon)}
		if edges {
			row = append(row, formatCoord(resp.Left[i].Lat, resp.Left[i].Lon), formatCoord(resp.Right[i].Lat, resp.Right[i].Lon))
		}
		t.row(row...)
	}
	t.flush()
	fmt.Printf("  %s\n\n", colorize(dim, formatCount(len(resp.Path))+" points"))
	return nil
}
