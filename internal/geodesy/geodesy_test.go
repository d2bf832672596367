package geodesy

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSphereDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{name: "coincident", a: Point{10, 20}, b: Point{10, 20}, want: 0, tol: 0},
		{name: "one degree along equator", a: Point{0, 0}, b: Point{0, 1}, want: 111.195, tol: 0.01},
		{name: "one degree along meridian", a: Point{0, 0}, b: Point{1, 0}, want: 111.195, tol: 0.01},
		{name: "across dateline", a: Point{0, 179.5}, b: Point{0, -179.5}, want: 111.195, tol: 0.01},
		{name: "antipodal", a: Point{0, 0}, b: Point{0, 180}, want: math.Pi * MeanEarthRadiusKM, tol: 0.01},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Default.Distance(tc.a, tc.b)
			if !almostEqual(got, tc.want, tc.tol) {
				t.Fatalf("Distance(%v, %v) = %.4f, want %.4f", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestSphereBearing(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{name: "north", a: Point{0, 0}, b: Point{1, 0}, want: 0},
		{name: "east", a: Point{0, 0}, b: Point{0, 1}, want: 90},
		{name: "south", a: Point{1, 0}, b: Point{0, 0}, want: 180},
		{name: "west", a: Point{0, 1}, b: Point{0, 0}, want: 270},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Default.Bearing(tc.a, tc.b)
			if got < 0 || got >= 360 {
				t.Fatalf("bearing %.6f outside [0, 360)", got)
			}
			if !almostEqual(got, tc.want, 1e-9) {
				t.Fatalf("Bearing(%v, %v) = %.6f, want %.1f", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestSphereDestinationRoundTrip(t *testing.T) {
	origins := []Point{{0, 0}, {-35.28, 149.13}, {64.2, -149.49}, {10, 179.9}}
	bearings := []float64{0, 45, 90, 200, 315}

	for _, o := range origins {
		for _, b := range bearings {
			d := Default.Destination(o, b, 75)
			if got := Default.Distance(o, d); !almostEqual(got, 75, 1e-6) {
				t.Errorf("origin %v bearing %.0f: distance to destination = %.9f, want 75", o, b, got)
			}
			if d.Lon < -180 || d.Lon > 180 {
				t.Errorf("origin %v bearing %.0f: longitude %.4f not normalized", o, b, d.Lon)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := NormalizeBearing(-90); got != 270 {
		t.Errorf("NormalizeBearing(-90) = %v, want 270", got)
	}
	if got := NormalizeBearing(450); got != 90 {
		t.Errorf("NormalizeBearing(450) = %v, want 90", got)
	}
	if got := NormalizeLon(190); !almostEqual(got, -170, 1e-9) {
		t.Errorf("NormalizeLon(190) = %v, want -170", got)
	}
	if got := NormalizeLon(-180); got != -180 {
		t.Errorf("NormalizeLon(-180) = %v, want -180", got)
	}
}

func TestEllipsoidDistance(t *testing.T) {
	e := Ellipsoid{Sphere: Default}
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{name: "coincident", a: Point{48.85, 2.35}, b: Point{48.85, 2.35}, want: 0, tol: 0},
		{name: "one degree along equator", a: Point{0, 0}, b: Point{0, 1}, want: 111.3195, tol: 0.001},
		{name: "one degree along meridian", a: Point{0, 0}, b: Point{1, 0}, want: 110.574, tol: 0.1},
		{name: "across dateline", a: Point{0, 179.5}, b: Point{0, -179.5}, want: 111.3195, tol: 0.001},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Distance(tc.a, tc.b)
			if !almostEqual(got, tc.want, tc.tol) {
				t.Fatalf("Distance(%v, %v) = %.4f, want %.4f", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "sphere", " Ellipsoid "} {
		if _, err := ByName(name, MeanEarthRadiusKM); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("flat", MeanEarthRadiusKM); err == nil {
		t.Error("expected error for unknown model")
	}
	m, _ := ByName("ellipsoid", MeanEarthRadiusKM)
	if _, ok := m.(Ellipsoid); !ok {
		t.Errorf("ellipsoid resolved to %T", m)
	}
}
