package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/large-farva/swath-planner/internal/geodesy"
	"github.com/large-farva/swath-planner/internal/schedule"
	"github.com/large-farva/swath-planner/internal/session"
)

// Track colors cycle per satellite.
var palette = []string{"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4", "#42d4f4", "#f032e6"}

const (
	minSize = 90
	maxSize = 4096
)

// SVG renders run on an equirectangular world map of w by h pixels.
// Paths are solid, swath edges dashed, captured targets filled and missed
// targets hollow. Sizes are clamped to a sane range.
func SVG(run *session.Run, targets []schedule.Target, w, h int) []byte {
	w = clampSize(w)
	h = clampSize(h)
	proj := func(p geodesy.Point) (float64, float64) {
		return (p.Lon + 180) / 360 * float64(w), (90 - p.Lat) / 180 * float64(h)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", w, h, w, h)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#0b1d2e"/>`+"\n", w, h)

	// Graticule every 30 degrees.
	b.WriteString(`<g stroke="#24415c" stroke-width="0.5">` + "\n")
	for lon := -150; lon <= 150; lon += 30 {
		x, _ := proj(geodesy.Point{Lon: float64(lon)})
		fmt.Fprintf(&b, `<line x1="%.1f" y1="0" x2="%.1f" y2="%d"/>`+"\n", x, x, h)
	}
	for lat := -60; lat <= 60; lat += 30 {
		_, y := proj(geodesy.Point{Lat: float64(lat)})
		fmt.Fprintf(&b, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f"/>`+"\n", y, w, y)
	}
	b.WriteString("</g>\n")

	if run != nil {
		for i, s := range run.Satellites {
			color := palette[i%len(palette)]
			fmt.Fprintf(&b, `<g id="sat-%d" fill="none" stroke="%s"><title>%s</title>`+"\n", i, color, html.EscapeString(s.Satellite.Name))
			polylines(&b, pathPoints(s.Path), proj, `stroke-width="1.5"`)
			polylines(&b, s.Left, proj, `stroke-width="0.8" stroke-dasharray="4 3"`)
			polylines(&b, s.Right, proj, `stroke-width="0.8" stroke-dasharray="4 3"`)
			b.WriteString("</g>\n")
		}
	}

	caps := captureOf(run)
	b.WriteString(`<g id="targets">` + "\n")
	for i, t := range targets {
		x, y := proj(t.Point())
		label := t.Name
		if label == "" {
			label = fmt.Sprintf("target %d", i)
		}
		if c, ok := caps[i]; ok {
			label += " captured by " + c.Satellite + " at " + c.Time.UTC().Format("15:04Z")
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3" fill="#ffe119" class="captured"><title>%s</title></circle>`+"\n", x, y, html.EscapeString(label))
		} else {
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3" fill="none" stroke="#ffffff" class="missed"><title>%s</title></circle>`+"\n", x, y, html.EscapeString(label))
		}
	}
	b.WriteString("</g>\n</svg>\n")
	return []byte(b.String())
}

func polylines(b *strings.Builder, pts []geodesy.Point, proj func(geodesy.Point) (float64, float64), attrs string) {
	for _, seg := range SplitAntimeridian(pts) {
		if len(seg) < 2 {
			continue
		}
		b.WriteString(`<polyline ` + attrs + ` points="`)
		for i, p := range seg {
			x, y := proj(p)
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(b, "%.1f,%.1f", x, y)
		}
		b.WriteString(`"/>` + "\n")
	}
}

func clampSize(v int) int {
	return min(max(v, minSize), maxSize)
}
