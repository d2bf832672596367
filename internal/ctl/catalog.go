package ctl

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// CatalogOptions configures the catalog command.
type CatalogOptions struct {
	Query string
	Limit int
	JSON  bool
}

// Catalog lists element sets known to the daemon's catalog, along with the
// cache state.
func Catalog(baseURL string, opts CatalogOptions) error {
	params := url.Values{}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/api/catalog"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp struct {
		Cache struct {
			URL        string  `json:"url"`
			Path       string  `json:"path"`
			Exists     bool    `json:"exists"`
			AgeSeconds int64   `json:"age_seconds"`
			Fresh      bool    `json:"fresh"`
			Source     string  `json:"source"`
			Entries    int     `json:"entries"`
			LoadedAt   *string `json:"loaded_at"`
		} `json:"cache"`
		Entries []struct {
			NoradID  int `json:"norad_id"`
			Elements struct {
				Name string `json:"name"`
			} `json:"elements"`
		} `json:"entries"`
	}
	if err := getJSON(baseURL, path, &resp); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(resp)
	}

	c := resp.Cache
	status := colorize(red, "NOT CACHED")
	switch {
	case c.Exists && c.Fresh:
		status = colorize(green, "FRESH")
	case c.Exists:
		status = colorize(yellow, "STALE")
	}

	fmt.Println()
	fmt.Println(header("  ELEMENT CATALOG"))
	fmt.Println(rule(50))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Cache:"), status)
	if c.Exists {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Age:"), formatDuration(time.Duration(c.AgeSeconds)*time.Second))
	}
	fmt.Printf("  %-12s %s\n", colorize(dim, "Loaded from:"), c.Source)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Source URL:"), c.URL)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Entries:"), formatCount(c.Entries))
	fmt.Println()

	t := newTable("  ", "NORAD ID", "Name")
	t.alignRight(0)
	for _, e := range resp.Entries {
		t.row(strconv.Itoa(e.NoradID), e.Elements.Name)
	}
	t.flush()
	fmt.Println()
	return nil
}

// CatalogRefresh forces the daemon to fetch the catalog from the network.
func CatalogRefresh(baseURL string, jsonOutput bool) error {
	var resp struct {
		result
		SatellitesUpdated int `json:"satellites_updated"`
	}
	if err := postJSON(baseURL, "/api/catalog/refresh", nil, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}
	return printResult(resp.result, "REFRESHED", false)
}
