package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/large-farva/swath-planner/internal/geodesy"
	"github.com/large-farva/swath-planner/internal/schedule"
	"github.com/large-farva/swath-planner/internal/session"
	"github.com/large-farva/swath-planner/internal/track"
)

var at = time.Date(2025, 5, 18, 9, 0, 0, 0, time.UTC)

func sampleRun() (*session.Run, []schedule.Target) {
	targets := []schedule.Target{
		{Name: "Suva", Lat: -18.14, Lon: 178.44},
		{Name: "Apia", Lat: -13.83, Lon: -171.76},
	}
	path := []track.Subpoint{
		{Time: at, Lat: -18, Lon: 178},
		{Time: at.Add(time.Minute), Lat: -17, Lon: 179.5},
		{Time: at.Add(2 * time.Minute), Lat: -16, Lon: -179},
	}
	run := &session.Run{
		Targets: targets,
		Satellites: []session.SatelliteRun{{
			Satellite: track.Elements{Name: "SAT <1>"},
			Path:      path,
			Left:      []geodesy.Point{{Lat: -18, Lon: 177}, {Lat: -17, Lon: 178.5}, {Lat: -16, Lon: 179.9}},
			Right:     []geodesy.Point{{Lat: -18, Lon: 179}, {Lat: -17, Lon: -179.5}, {Lat: -16, Lon: -178}},
			Captures:  []schedule.Capture{{Target: targets[0], Index: 0, Time: at}},
		}},
	}
	return run, targets
}

func TestSplitAntimeridian(t *testing.T) {
	tests := []struct {
		name string
		pts  []geodesy.Point
		want []int
	}{
		{name: "empty", pts: nil, want: nil},
		{name: "no crossing", pts: []geodesy.Point{{Lon: 10}, {Lon: 20}, {Lon: 30}}, want: []int{3}},
		{name: "eastward crossing", pts: []geodesy.Point{{Lon: 178}, {Lon: 179.5}, {Lon: -179}, {Lon: -177}}, want: []int{2, 2}},
		{name: "two crossings", pts: []geodesy.Point{{Lon: 179}, {Lon: -179}, {Lon: 179}}, want: []int{1, 1, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitAntimeridian(tc.pts)
			if len(got) != len(tc.want) {
				t.Fatalf("segments = %d, want %d", len(got), len(tc.want))
			}
			for i, seg := range got {
				if len(seg) != tc.want[i] {
					t.Errorf("segment %d has %d points, want %d", i, len(seg), tc.want[i])
				}
			}
		})
	}
}

func TestGeoJSON(t *testing.T) {
	run, targets := sampleRun()
	b, err := GeoJSON(run, targets)
	if err != nil {
		t.Fatalf("GeoJSON: %v", err)
	}

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Type != "FeatureCollection" {
		t.Fatalf("type = %q", doc.Type)
	}
	if len(doc.Features) != 5 {
		t.Fatalf("features = %d, want path, two edges and two targets", len(doc.Features))
	}

	path := doc.Features[0]
	if path.Properties["kind"] != KindPath || path.Geometry.Type != "MultiLineString" {
		t.Fatalf("first feature = %+v", path.Properties)
	}
	var lines [][][]float64
	if err := json.Unmarshal(path.Geometry.Coordinates, &lines); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || len(lines[0]) != 2 || lines[0][0][0] != 178 || lines[0][0][1] != -18 {
		t.Fatalf("path coordinates = %v", lines)
	}

	suva, apia := doc.Features[3].Properties, doc.Features[4].Properties
	if suva["captured"] != true || suva["satellite"] != "SAT <1>" || suva["capture_time"] != "2025-05-18T09:00:00Z" {
		t.Errorf("suva = %v", suva)
	}
	if apia["captured"] != false {
		t.Errorf("apia = %v", apia)
	}
}

func TestGeoJSONWithoutRun(t *testing.T) {
	_, targets := sampleRun()
	b, err := GeoJSON(nil, targets)
	if err != nil {
		t.Fatalf("GeoJSON: %v", err)
	}
	if n := strings.Count(string(b), `"kind":"target"`); n != 2 {
		t.Fatalf("target features = %d, want 2", n)
	}
}

func TestSVG(t *testing.T) {
	run, targets := sampleRun()
	out := string(SVG(run, targets, 720, 360))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="720" height="360"`) {
		t.Fatalf("unexpected header: %.80s", out)
	}
	// Path splits once and the right edge splits once; the left edge does not.
	if n := strings.Count(out, "<polyline"); n != 3 {
		t.Errorf("polylines = %d, want 3", n)
	}
	if !strings.Contains(out, "SAT &lt;1&gt;") {
		t.Error("satellite name not escaped")
	}
	if strings.Count(out, `class="captured"`) != 1 || strings.Count(out, `class="missed"`) != 1 {
		t.Error("target markers wrong")
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document not closed")
	}
}

func TestSVGClampsSize(t *testing.T) {
	out := string(SVG(nil, nil, 1, 1_000_000))
	if !strings.Contains(out, `width="90" height="4096"`) {
		t.Fatalf("size not clamped: %.80s", out)
	}
}
