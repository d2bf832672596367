package ctl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Health checks daemon liveness and prints the component checks from the
// detailed /healthz variant.
func Health(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	req, err := http.NewRequest(http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		if jsonOutput {
			return printJSON(map[string]any{"healthy": false, "url": baseURL, "error": err.Error()})
		}
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Healthy bool                      `json:"healthy"`
		Checks  map[string]map[string]any `json:"checks"`
	}
	// 503 still carries the check breakdown.
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		body.Healthy = resp.StatusCode == http.StatusOK
	}

	if jsonOutput {
		return printJSON(map[string]any{"healthy": body.Healthy, "url": baseURL, "checks": body.Checks})
	}

	fmt.Println()
	if body.Healthy {
		fmt.Printf("  %s  swathd is reachable at %s\n", colorize(green, "HEALTHY"), colorize(dim, baseURL))
	} else {
		fmt.Printf("  %s  swathd returned HTTP %d at %s\n", colorize(red, "UNHEALTHY"), resp.StatusCode, colorize(dim, baseURL))
	}

	names := make([]string, 0, len(body.Checks))
	for name := range body.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := body.Checks[name]
		mark := colorize(green, "ok  ")
		if ok, _ := c["ok"].(bool); !ok {
			mark = colorize(red, "FAIL")
		}
		detail := ""
		if e, ok := c["error"].(string); ok {
			detail = e
		} else if p, ok := c["path"].(string); ok {
			detail = p
		} else if n, ok := c["count"].(float64); ok {
			detail = formatCount(int(n))
		}
		fmt.Printf("    %s  %s %s\n", mark, padRight(name, 14), colorize(dim, detail))
	}
	fmt.Println()

	return nil
}
