// Package ctl implements the client-side commands for swathctl.
// It talks to a running swathd over HTTP and WebSocket and renders the results to the terminal.
package ctl

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ANSI escape codes for terminal formatting.
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	white   = "\033[37m"
)

// numbers groups digits for counts and distances.
var numbers = message.NewPrinter(language.English)

// colorEnabled reports whether stdout is a terminal. When output is piped
// or redirected, ANSI escape codes are suppressed.
func colorEnabled() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// stateColor returns the ANSI color code appropriate for a daemon state.
func stateColor(state string) string {
	if !colorEnabled() {
		return ""
	}
	switch state {
	case "IDLE":
		return green
	case "PLANNING":
		return cyan
	case "BOOTING":
		return dim
	default:
		return white
	}
}

// colorize wraps text with an ANSI color sequence.
// Returns the text unchanged when color output is disabled.
func colorize(color, text string) string {
	if !colorEnabled() || color == "" {
		return text
	}
	return color + text + reset
}

// header returns a bold section header, or plain text when color is off.
func header(title string) string {
	if colorEnabled() {
		return bold + title + reset
	}
	return title
}

// rule is a dimmed horizontal line of the given width.
func rule(width int) string {
	return colorize(dim, "  "+strings.Repeat("─", width))
}

var ansiRE = regexp.MustCompile("\033\\[[0-9;]*m")

// visibleLen is the printed width of s, ignoring ANSI sequences.
func visibleLen(s string) int {
	return utf8.RuneCountInString(ansiRE.ReplaceAllString(s, ""))
}

// padRight pads s with spaces to reach the given width.
func padRight(s string, width int) string {
	n := visibleLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func padLeft(s string, width int) string {
	n := visibleLen(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// formatDuration renders a time.Duration as a compact human string like
// "2h 14m 8s" or "45s".
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// formatBytes renders a byte count as a human-readable string.
func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatCount groups the digits of n ("12,345").
func formatCount(n int) string {
	return numbers.Sprintf("%d", n)
}

// formatPercent renders a 0..1 ratio as a percentage.
func formatPercent(r float64) string {
	return numbers.Sprintf("%.1f%%", r*100)
}

// formatCoord renders a latitude/longitude pair with hemisphere letters.
func formatCoord(lat, lon float64) string {
	ns, ew := "N", "E"
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%7.3f°%s %8.3f°%s", lat, ns, lon, ew)
}

// formatClock parses an RFC 3339 timestamp and returns the UTC wall clock.
func formatClock(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("2006-01-02 15:04:05Z")
}

// progressBar builds a simple ASCII bar of the given width.
// The filled portion is colored green when color output is enabled.
func progressBar(pct, width int) string {
	filled := (pct * width) / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	empty := width - filled
	if colorEnabled() {
		return green + strings.Repeat("=", filled) + reset + strings.Repeat(" ", empty)
	}
	return strings.Repeat("=", filled) + strings.Repeat(" ", empty)
}

// table buffers rows and prints them with aligned columns.
type table struct {
	indent  string
	headers []string
	rows    [][]string
	right   map[int]bool
}

func newTable(indent string, headers ...string) *table {
	return &table{indent: indent, headers: headers, right: map[int]bool{}}
}

// alignRight right-aligns the given column indexes.
func (t *table) alignRight(cols ...int) {
	for _, c := range cols {
		t.right[c] = true
	}
}

func (t *table) row(cells ...string) {
	t.rows = append(t.rows, cells)
}

// render returns the formatted table.
func (t *table) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			if i < len(widths) && visibleLen(c) > widths[i] {
				widths[i] = visibleLen(c)
			}
		}
	}

	var sb strings.Builder
	line := func(cells []string, color string) {
		parts := make([]string, len(widths))
		for i := range widths {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			if t.right[i] {
				c = padLeft(c, widths[i])
			} else if i < len(widths)-1 {
				c = padRight(c, widths[i])
			}
			parts[i] = colorize(color, c)
		}
		sb.WriteString(strings.TrimRight(t.indent+strings.Join(parts, "  "), " "))
		sb.WriteByte('\n')
	}

	line(t.headers, dim)
	total := 2 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	sb.WriteString(colorize(dim, t.indent+strings.Repeat("─", total)))
	sb.WriteByte('\n')
	for _, r := range t.rows {
		line(r, "")
	}
	return sb.String()
}

func (t *table) flush() {
	fmt.Print(t.render())
}
