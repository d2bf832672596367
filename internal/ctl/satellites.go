package ctl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Satellites lists the satellites in the daemon's session.
func Satellites(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp struct {
		Satellites []struct {
			Name    string `json:"name"`
			NoradID int    `json:"norad_id"`
			Line1   string `json:"line1"`
			Line2   string `json:"line2"`
		} `json:"satellites"`
	}
	if err := getJSON(baseURL, "/api/satellites", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  SATELLITES"))

	if len(resp.Satellites) == 0 {
		fmt.Println(rule(24))
		fmt.Println("  No satellites. Add one with sat-add.")
		fmt.Println()
		return nil
	}

	t := newTable("  ", "Name", "NORAD ID", "Epoch")
	t.alignRight(1)
	for _, s := range resp.Satellites {
		t.row(s.Name, strconv.Itoa(s.NoradID), tleEpoch(s.Line1))
	}
	t.flush()
	fmt.Println()

	return nil
}

// tleEpoch returns the epoch field (YYDDD.DDDDDDDD) of line 1.
func tleEpoch(line1 string) string {
	if len(line1) < 32 {
		return ""
	}
	return strings.TrimSpace(line1[18:32])
}

// SatAddOptions configures the sat-add command. Either NoradID or both
// element lines must be set.
type SatAddOptions struct {
	Name    string
	Line1   string
	Line2   string
	NoradID int
	JSON    bool
}

// SatAdd adds a satellite to the session, from explicit element lines or
// by NORAD ID from the daemon's catalog.
func SatAdd(baseURL string, opts SatAddOptions) error {
	if opts.NoradID == 0 && (opts.Line1 == "" || opts.Line2 == "") {
		return fmt.Errorf("sat-add needs --norad-id or both --line1 and --line2")
	}
	body := map[string]any{"name": opts.Name}
	if opts.NoradID != 0 {
		body["norad_id"] = opts.NoradID
	} else {
		body["line1"] = opts.Line1
		body["line2"] = opts.Line2
	}

	var r result
	if err := postJSON(baseURL, "/api/satellites", body, &r); err != nil {
		return err
	}
	return printResult(r, "ADDED", opts.JSON)
}

// SatRemove removes a satellite by name. An empty name clears them all.
func SatRemove(baseURL, name string, jsonOutput bool) error {
	path := "/api/satellites"
	if name != "" {
		path += "?name=" + url.QueryEscape(name)
	}
	var r result
	if err := deleteJSON(baseURL, path, &r); err != nil {
		return err
	}
	return printResult(r, "REMOVED", jsonOutput)
}
