// Package render draws a planning run for display: a GeoJSON document for
// web maps and a self-contained plate carrée SVG. Nothing here feeds back
// into planning.
package render

import (
	"encoding/json"
	"math"
	"time"

	"github.com/large-farva/swath-planner/internal/geodesy"
	"github.com/large-farva/swath-planner/internal/schedule"
	"github.com/large-farva/swath-planner/internal/session"
	"github.com/large-farva/swath-planner/internal/track"
)

// Feature kinds, carried in the "kind" property.
const (
	KindPath   = "path"
	KindLeft   = "left_edge"
	KindRight  = "right_edge"
	KindTarget = "target"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// captureOf finds the earliest capture of each target index across all
// satellites.
func captureOf(run *session.Run) map[int]session.NamedCapture {
	first := make(map[int]session.NamedCapture)
	if run == nil {
		return first
	}
	for _, c := range run.Captures() {
		prev, ok := first[c.Index]
		if !ok || c.Time.Before(prev.Time) {
			first[c.Index] = c
		}
	}
	return first
}

// GeoJSON renders run as a FeatureCollection: a MultiLineString per path and
// swath edge, split where it crosses the antimeridian, and a Point per
// target. Coordinates are [lon, lat]. A nil run renders targets only.
func GeoJSON(run *session.Run, targets []schedule.Target) ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}

	if run != nil {
		for _, s := range run.Satellites {
			name := s.Satellite.Name
			fc.Features = append(fc.Features, lineFeature(name, KindPath, pathPoints(s.Path), map[string]any{
				"points": len(s.Path),
				"start":  timeOrNil(s.Path, 0),
				"end":    timeOrNil(s.Path, len(s.Path)-1),
			}))
			if len(s.Left) > 0 {
				fc.Features = append(fc.Features, lineFeature(name, KindLeft, s.Left, nil))
			}
			if len(s.Right) > 0 {
				fc.Features = append(fc.Features, lineFeature(name, KindRight, s.Right, nil))
			}
		}
	}

	caps := captureOf(run)
	for i, t := range targets {
		props := map[string]any{
			"kind":     KindTarget,
			"index":    i,
			"name":     t.Name,
			"captured": false,
		}
		if c, ok := caps[i]; ok {
			props["captured"] = true
			props["satellite"] = c.Satellite
			props["capture_time"] = c.Time.UTC().Format(time.RFC3339)
		}
		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   geometry{Type: "Point", Coordinates: []float64{t.Lon, t.Lat}},
			Properties: props,
		})
	}

	return json.Marshal(fc)
}

func lineFeature(satellite, kind string, pts []geodesy.Point, extra map[string]any) feature {
	segments := SplitAntimeridian(pts)
	coords := make([][][]float64, 0, len(segments))
	for _, seg := range segments {
		// A GeoJSON line needs two positions.
		if len(seg) < 2 {
			continue
		}
		line := make([][]float64, len(seg))
		for i, p := range seg {
			line[i] = []float64{p.Lon, p.Lat}
		}
		coords = append(coords, line)
	}

	props := map[string]any{"kind": kind, "satellite": satellite}
	for k, v := range extra {
		props[k] = v
	}
	return feature{
		Type:       "Feature",
		Geometry:   geometry{Type: "MultiLineString", Coordinates: coords},
		Properties: props,
	}
}

func pathPoints(path []track.Subpoint) []geodesy.Point {
	pts := make([]geodesy.Point, len(path))
	for i, sp := range path {
		pts[i] = sp.Point()
	}
	return pts
}

func timeOrNil(path []track.Subpoint, i int) any {
	if i < 0 || i >= len(path) {
		return nil
	}
	return path[i].Time.UTC().Format(time.RFC3339)
}

// SplitAntimeridian breaks a polyline wherever consecutive longitudes jump by
// more than 180 degrees, so a track crossing the dateline is not drawn as a
// line across the whole map.
func SplitAntimeridian(pts []geodesy.Point) [][]geodesy.Point {
	if len(pts) == 0 {
		return nil
	}
	var out [][]geodesy.Point
	cur := []geodesy.Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		if math.Abs(pts[i].Lon-pts[i-1].Lon) > 180 {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, pts[i])
	}
	return append(out, cur)
}
