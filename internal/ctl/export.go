package ctl

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// ExportOptions configures the export command.
type ExportOptions struct {
	Format string // geojson or svg
	Output string // file path, "-" or empty for stdout
	Width  int
	Height int
}

// Export downloads the map of the last run (or just the targets when no run
// exists) as GeoJSON or SVG.
func Export(baseURL string, opts ExportOptions) error {
	var path string
	switch opts.Format {
	case "", "geojson":
		path = "/api/map.geojson"
	case "svg":
		params := url.Values{}
		if opts.Width > 0 {
			params.Set("w", strconv.Itoa(opts.Width))
		}
		if opts.Height > 0 {
			params.Set("h", strconv.Itoa(opts.Height))
		}
		path = "/api/map.svg"
		if len(params) > 0 {
			path += "?" + params.Encode()
		}
	default:
		return fmt.Errorf("unknown export format %q (want geojson or svg)", opts.Format)
	}

	status, body, err := getRaw(baseURL, path)
	if err != nil {
		return err
	}
	if status != 200 {
		return fmt.Errorf("HTTP %d from %s", status, path)
	}

	if opts.Output == "" || opts.Output == "-" {
		_, err := os.Stdout.Write(body)
		return err
	}
	if err := os.WriteFile(opts.Output, body, 0o644); err != nil {
		return err
	}
	fmt.Printf("\n  %s  %s (%s)\n\n", colorize(green, "WROTE"), opts.Output, formatBytes(uint64(len(body))))
	return nil
}
