package track

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/large-farva/swath-planner/internal/geodesy"
)

// Real ISS element set (epoch May 2025).
var issElements = Elements{
	Name:  "ISS (ZARYA)",
	Line1: "1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9994",
	Line2: "2 25544  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533",
}

// equatorial moves one degree east per minute starting at (0, 0).
type equatorial struct {
	start time.Time
	fail  int // sample index that fails, or -1
	calls int
}

func (e *equatorial) Subpoint(t time.Time) (geodesy.Point, error) {
	defer func() { e.calls++ }()
	if e.calls == e.fail {
		return geodesy.Point{}, errors.New("boom")
	}
	minutes := t.Sub(e.start).Minutes()
	return geodesy.Point{Lat: 0, Lon: geodesy.NormalizeLon(minutes)}, nil
}

func TestWindowSamples(t *testing.T) {
	tests := []struct {
		name string
		w    Window
		want int
	}{
		{name: "exact", w: Window{Duration: 90 * time.Minute, Step: time.Minute}, want: 90},
		{name: "floor", w: Window{Duration: 10 * time.Minute, Step: 70 * time.Second}, want: 8},
		{name: "step longer than duration", w: Window{Duration: time.Minute, Step: 2 * time.Minute}, want: 0},
		{name: "zero step", w: Window{Duration: time.Minute}, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.w.Samples(); got != tc.want {
				t.Fatalf("Samples() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	start := time.Date(2025, 5, 18, 9, 0, 0, 0, time.UTC)
	prop := &equatorial{start: start, fail: -1}
	w := Window{Start: start, Duration: 10 * time.Minute, Step: 70 * time.Second}

	path, err := Generate(context.Background(), prop, w)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(path) != 8 {
		t.Fatalf("len(path) = %d, want 8", len(path))
	}
	for i, sp := range path {
		want := start.Add(time.Duration(i) * 70 * time.Second)
		if !sp.Time.Equal(want) {
			t.Errorf("path[%d].Time = %s, want %s", i, sp.Time, want)
		}
		if i > 0 && !sp.Time.After(path[i-1].Time) {
			t.Errorf("path[%d] not strictly after path[%d]", i, i-1)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	start := time.Date(2025, 5, 18, 9, 0, 0, 0, time.UTC)

	t.Run("empty window", func(t *testing.T) {
		_, err := Generate(context.Background(), &equatorial{start: start, fail: -1}, Window{Start: start})
		if !errors.Is(err, ErrEmptyPath) {
			t.Fatalf("err = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("propagation failure aborts", func(t *testing.T) {
		w := Window{Start: start, Duration: 10 * time.Minute, Step: time.Minute}
		path, err := Generate(context.Background(), &equatorial{start: start, fail: 3}, w)
		if err == nil {
			t.Fatal("expected error")
		}
		if path != nil {
			t.Fatalf("expected no partial path, got %d points", len(path))
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := Window{Start: start, Duration: 10 * time.Minute, Step: time.Minute}
		if _, err := Generate(ctx, &equatorial{start: start, fail: -1}, w); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

func TestEdgesEastbound(t *testing.T) {
	start := time.Date(2025, 5, 18, 9, 0, 0, 0, time.UTC)
	path, err := Generate(context.Background(), &equatorial{start: start, fail: -1},
		Window{Start: start, Duration: 5 * time.Minute, Step: time.Minute})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	const radius = 100.0
	left, right, err := Edges(path, radius, geodesy.Default)
	if err != nil {
		t.Fatalf("Edges: %v", err)
	}
	if len(left) != len(path) || len(right) != len(path) {
		t.Fatalf("len(left)=%d len(right)=%d, want %d", len(left), len(right), len(path))
	}

	wantLat := radius / (geodesy.MeanEarthRadiusKM * math.Pi / 180)
	for i := range path {
		// Heading east: left edge lies north, right edge south.
		if math.Abs(left[i].Lat-wantLat) > 1e-6 {
			t.Errorf("left[%d].Lat = %.6f, want %.6f", i, left[i].Lat, wantLat)
		}
		if math.Abs(right[i].Lat+wantLat) > 1e-6 {
			t.Errorf("right[%d].Lat = %.6f, want %.6f", i, right[i].Lat, -wantLat)
		}
		if math.Abs(left[i].Lon-path[i].Lon) > 1e-6 || math.Abs(right[i].Lon-path[i].Lon) > 1e-6 {
			t.Errorf("edge %d drifted in longitude", i)
		}
		for _, e := range []geodesy.Point{left[i], right[i]} {
			if d := geodesy.Default.Distance(path[i].Point(), e); math.Abs(d-radius) > 1e-6 {
				t.Errorf("edge %d at %.6f km, want %.1f", i, d, radius)
			}
		}
	}
}

func TestEdgesDegenerate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, _, err := Edges(nil, 10, geodesy.Default); !errors.Is(err, ErrEmptyPath) {
			t.Fatalf("err = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("single point heads north", func(t *testing.T) {
		path := []Subpoint{{Time: time.Unix(0, 0).UTC(), Lat: 0, Lon: 0}}
		left, right, err := Edges(path, 1, geodesy.Default)
		if err != nil {
			t.Fatalf("Edges: %v", err)
		}
		if len(left) != 1 || len(right) != 1 {
			t.Fatalf("want one edge point per side, got %d/%d", len(left), len(right))
		}
		if !(left[0].Lon < 0) || math.Abs(left[0].Lat) > 1e-9 {
			t.Errorf("left edge %v not due west", left[0])
		}
		if !(right[0].Lon > 0) || math.Abs(right[0].Lat) > 1e-9 {
			t.Errorf("right edge %v not due east", right[0])
		}
	})

	t.Run("final point uses previous heading", func(t *testing.T) {
		path := []Subpoint{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}}
		if got := Heading(path, 1, geodesy.Default); math.Abs(got) > 1e-9 {
			t.Fatalf("Heading at final point = %.6f, want 0", got)
		}
	})
}

func TestElementsValidate(t *testing.T) {
	if err := issElements.Validate(); err != nil {
		t.Fatalf("valid ISS elements rejected: %v", err)
	}

	bad := []Elements{
		{Line1: "1 25544U", Line2: issElements.Line2},
		{Line1: issElements.Line2, Line2: issElements.Line1},
		{Line1: issElements.Line1, Line2: "2 33591  99.0072 138.3781 0012918 245.4492 114.5334 14.13308947829901"},
	}
	for i, e := range bad {
		if err := e.Validate(); !errors.Is(err, ErrBadElements) {
			t.Errorf("case %d: err = %v, want ErrBadElements", i, err)
		}
		if _, err := NewSGP4(e); !errors.Is(err, ErrBadElements) {
			t.Errorf("case %d: NewSGP4 err = %v, want ErrBadElements", i, err)
		}
	}
}

func TestCatalogNumber(t *testing.T) {
	if got := issElements.CatalogNumber(); got != 25544 {
		t.Errorf("CatalogNumber = %d, want 25544", got)
	}
	if got := (Elements{Line1: "1 ABCDEU"}).CatalogNumber(); got != 0 {
		t.Errorf("non-numeric CatalogNumber = %d, want 0", got)
	}
}

func TestSGP4GroundTrack(t *testing.T) {
	prop, err := NewSGP4(issElements)
	if err != nil {
		t.Fatalf("NewSGP4: %v", err)
	}

	start := time.Date(2025, 5, 18, 12, 0, 0, 0, time.UTC)
	path, err := Generate(context.Background(), prop, Window{Start: start, Duration: 90 * time.Minute, Step: time.Minute})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(path) != 90 {
		t.Fatalf("len(path) = %d, want 90", len(path))
	}

	for i, sp := range path {
		// The ground track of a 51.6° orbit never leaves that latitude band.
		if math.Abs(sp.Lat) > 52.5 {
			t.Errorf("path[%d].Lat = %.3f outside inclination band", i, sp.Lat)
		}
		if sp.Lon < -180 || sp.Lon > 180 {
			t.Errorf("path[%d].Lon = %.3f not normalized", i, sp.Lon)
		}
		if i == 0 {
			continue
		}
		// ISS ground speed is roughly 7 km/s, so about 400 km per minute.
		d := geodesy.Default.Distance(path[i-1].Point(), sp.Point())
		if d < 300 || d > 550 {
			t.Errorf("step %d covers %.1f km, want 300-550", i, d)
		}
	}
}
