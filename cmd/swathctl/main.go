// Swathctl is the command-line client for a running swathd instance. It
// edits the planning session, triggers runs and prints schedules, tracks and
// live events over HTTP and WebSocket.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/large-farva/swath-planner/internal/ctl"
)

func main() {
	var (
		host    = pflag.StringP("host", "H", "http://127.0.0.1:8090", "Swath planner daemon URL (e.g. http://192.168.8.1:8090)")
		jsonOut = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
		filter  = pflag.StringSlice("filter", nil, "Event types to show in watch (e.g. --filter state,capture)")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --duration are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]

	var err error
	switch cmd {
	// ── Query commands ────────────────────────────────────────────
	case "status":
		err = ctl.Status(*host, *jsonOut)

	case "health":
		err = ctl.Health(*host, *jsonOut)

	case "version":
		err = ctl.VersionInfo(*host, *jsonOut)

	case "config":
		err = ctl.Config(*host, *jsonOut)

	case "config-list":
		err = ctl.ConfigList(*host, *jsonOut)

	case "satellites":
		err = ctl.Satellites(*host, *jsonOut)

	case "targets":
		err = ctl.Targets(*host, *jsonOut)

	case "catalog":
		opts := ctl.CatalogOptions{JSON: *jsonOut}
		catFlags := pflag.NewFlagSet("catalog", pflag.ContinueOnError)
		catFlags.StringVarP(&opts.Query, "query", "q", "", "Filter by name or NORAD ID")
		catFlags.IntVar(&opts.Limit, "limit", 0, "Limit number of entries shown")
		err = parseThen(catFlags, subArgs, func() error { return ctl.Catalog(*host, opts) })

	case "captures":
		opts := ctl.CapturesOptions{JSON: *jsonOut}
		capFlags := pflag.NewFlagSet("captures", pflag.ContinueOnError)
		capFlags.StringVar(&opts.Satellite, "satellite", "", "Only show captures by this satellite")
		err = parseThen(capFlags, subArgs, func() error { return ctl.Captures(*host, opts) })

	case "track":
		opts := ctl.TrackOptions{JSON: *jsonOut}
		trackFlags := pflag.NewFlagSet("track", pflag.ContinueOnError)
		trackFlags.StringVar(&opts.Satellite, "satellite", "", "Satellite to show (optional with a single satellite)")
		trackFlags.IntVar(&opts.Every, "every", 1, "Show every Nth point")
		err = parseThen(trackFlags, subArgs, func() error { return ctl.Track(*host, opts) })

	case "export":
		opts := ctl.ExportOptions{}
		exportFlags := pflag.NewFlagSet("export", pflag.ContinueOnError)
		exportFlags.StringVarP(&opts.Format, "format", "f", "geojson", "geojson or svg")
		exportFlags.StringVarP(&opts.Output, "output", "o", "-", "Output file (- for stdout)")
		exportFlags.IntVar(&opts.Width, "width", 0, "SVG width in pixels")
		exportFlags.IntVar(&opts.Height, "height", 0, "SVG height in pixels")
		err = parseThen(exportFlags, subArgs, func() error { return ctl.Export(*host, opts) })

	case "logs":
		opts := ctl.LogsOptions{JSON: *jsonOut}
		logFlags := pflag.NewFlagSet("logs", pflag.ContinueOnError)
		logFlags.StringVar(&opts.Level, "level", "", "Filter by log level (info, warning, error)")
		logFlags.StringVar(&opts.Component, "component", "", "Filter by component (planner, catalog, ...)")
		logFlags.IntVar(&opts.Limit, "limit", 0, "Limit number of log entries shown")
		logFlags.BoolVar(&opts.Tail, "tail", false, "Stream live log events (like watch --filter log)")
		err = parseThen(logFlags, subArgs, func() error { return ctl.Logs(*host, opts) })

	// ── Session commands ──────────────────────────────────────────
	case "sat-add":
		opts := ctl.SatAddOptions{JSON: *jsonOut}
		addFlags := pflag.NewFlagSet("sat-add", pflag.ContinueOnError)
		addFlags.IntVar(&opts.NoradID, "norad-id", 0, "Look the elements up in the daemon's catalog")
		addFlags.StringVar(&opts.Line1, "line1", "", "TLE line 1")
		addFlags.StringVar(&opts.Line2, "line2", "", "TLE line 2")
		err = parseThen(addFlags, subArgs, func() error {
			if addFlags.NArg() > 0 {
				opts.Name = addFlags.Arg(0)
			}
			return ctl.SatAdd(*host, opts)
		})

	case "sat-remove":
		rmFlags := pflag.NewFlagSet("sat-remove", pflag.ContinueOnError)
		all := rmFlags.Bool("all", false, "Remove every satellite")
		err = parseThen(rmFlags, subArgs, func() error {
			if rmFlags.NArg() == 0 && !*all {
				return fmt.Errorf("sat-remove needs a satellite name or --all")
			}
			return ctl.SatRemove(*host, rmFlags.Arg(0), *jsonOut)
		})

	case "target-add":
		opts := ctl.TargetAddOptions{JSON: *jsonOut}
		tgFlags := pflag.NewFlagSet("target-add", pflag.ContinueOnError)
		tgFlags.Float64Var(&opts.Lat, "lat", 0, "Latitude in degrees")
		tgFlags.Float64Var(&opts.Lon, "lon", 0, "Longitude in degrees")
		tgFlags.BoolVar(&opts.GPSD, "gpsd", false, "Use the daemon's current gpsd fix")
		err = parseThen(tgFlags, subArgs, func() error {
			if tgFlags.NArg() > 0 {
				opts.Name = tgFlags.Arg(0)
			}
			return ctl.TargetAdd(*host, opts)
		})

	case "targets-clear":
		err = ctl.TargetsClear(*host, *jsonOut)

	// ── Control commands ──────────────────────────────────────────
	case "run":
		opts := ctl.RunOptions{JSON: *jsonOut}
		runFlags := pflag.NewFlagSet("run", pflag.ContinueOnError)
		runFlags.StringVar(&opts.Start, "start", "", "Start time, RFC 3339 (default: now)")
		runFlags.IntVar(&opts.DurationMinutes, "duration", 0, "Window length in minutes")
		runFlags.IntVar(&opts.StepSeconds, "step", 0, "Sample step in seconds")
		runFlags.Float64Var(&opts.SwathRadiusKM, "radius", 0, "Swath radius in km")
		runFlags.BoolVar(&opts.NoEdges, "no-edges", false, "Skip swath edge computation")
		runFlags.BoolVar(&opts.Merge, "merge", false, "Capture duplicate targets once")
		err = parseThen(runFlags, subArgs, func() error { return ctl.Run(*host, opts) })

	case "catalog-refresh":
		err = ctl.CatalogRefresh(*host, *jsonOut)

	case "reset":
		err = ctl.Reset(*host, *jsonOut)

	case "reload":
		opts := ctl.ReloadOptions{JSON: *jsonOut}
		reloadFlags := pflag.NewFlagSet("reload", pflag.ContinueOnError)
		reloadFlags.StringVar(&opts.Profile, "profile", "", "Switch to a named config profile")
		err = parseThen(reloadFlags, subArgs, func() error { return ctl.Reload(*host, opts) })

	// ── Live streaming ────────────────────────────────────────────
	case "watch":
		watchFlags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
		sub := watchFlags.StringSlice("filter", nil, "Event types to show")
		err = parseThen(watchFlags, subArgs, func() error {
			return ctl.Watch(*host, ctl.WatchOptions{
				Filter: append(*filter, *sub...),
				JSON:   *jsonOut,
			})
		})

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// parseThen parses subcommand flags and runs fn when they are valid.
func parseThen(fs *pflag.FlagSet, args []string, fn func() error) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	return fn()
}

func usage() {
	fmt.Print(`
  swathctl - swath planner control CLI

  USAGE
    swathctl [flags] <command> [command-flags]

  COMMANDS (query)
    status          Show daemon state, session and last run
    health          Check daemon and component health
    version         Show CLI and daemon version information
    config          Show the daemon's running configuration
    config-list     List available config profiles
    satellites      List satellites in the session
    targets         List the targets the next run uses
    catalog         Browse the element catalog and its cache state
    captures        Show the capture schedule of the last run
    track           Show the ground track and swath edges of the last run
    export          Download the last run's map as GeoJSON or SVG
    logs            Show recent daemon log messages

  COMMANDS (session)
    sat-add         Add a satellite from TLE lines or the catalog
    sat-remove      Remove a satellite (or all with --all)
    target-add      Add a custom target
    targets-clear   Drop custom targets, back to the built-in list

  COMMANDS (control)
    run             Plan a run over the current session
    catalog-refresh Force an element catalog update from the network
    reset           Reset the session to the configured defaults
    reload          Reload configuration from disk

  COMMANDS (live)
    watch           Stream live events from the daemon (Ctrl-C to stop)

  GLOBAL FLAGS
    -H, --host URL      Daemon base URL (default: http://127.0.0.1:8090)
        --json          Output raw JSON instead of formatted text
        --filter TYPE   Event types to show in watch (comma-separated)

  COMMAND FLAGS
    run:
        --start TIME        Start time, RFC 3339 (default: now)
        --duration MIN      Window length in minutes
        --step SECS         Sample step in seconds
        --radius KM         Swath radius in km
        --no-edges          Skip swath edge computation
        --merge             Capture duplicate targets once

    sat-add NAME:
        --norad-id ID       Take the elements from the catalog
        --line1, --line2    Explicit TLE lines

    target-add NAME:
        --lat, --lon        Position in degrees
        --gpsd              Use the daemon's gpsd fix

    track:
        --satellite NAME    Satellite to show
        --every N           Show every Nth point

    export:
        -f, --format FMT    geojson or svg (default: geojson)
        -o, --output FILE   Output file (default: stdout)
        --width, --height   SVG size in pixels

    logs:
        --level LEVEL       Filter by log level
        --component NAME    Filter by component
        --limit N           Limit number of log entries shown
        --tail              Stream live log events

    reload:
        --profile NAME      Switch to a named config profile

  EXAMPLES
    swathctl status
    swathctl sat-add "NOAA 19" --norad-id 33591
    swathctl target-add Reykjavik --lat 64.1466 --lon -21.9426
    swathctl run --duration 120 --radius 100
    swathctl captures --satellite "NOAA 19"
    swathctl track --every 10
    swathctl export -f svg -o swath.svg
    swathctl --json captures
    swathctl watch --filter run_started,capture,run_finished
    swathctl reload --profile south

`)
}
