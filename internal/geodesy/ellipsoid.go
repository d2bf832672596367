package geodesy

import (
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/unit"
)

// Ellipsoid measures distance on the IAU 1976 reference ellipsoid using
// Andoyer's method. Bearings and destinations, which only shape the drawn
// swath edges, stay on the sphere.
type Ellipsoid struct {
	Sphere
}

// Distance is accurate to about 50 m for Earth-scale separations.
func (e Ellipsoid) Distance(a, b Point) float64 {
	if a.Lat == b.Lat && NormalizeLon(a.Lon) == NormalizeLon(b.Lon) {
		return 0
	}
	// Longitudes in the globe package are positive west. Negating both leaves
	// the distance unchanged, so eastward values can be passed straight in.
	d := globe.Earth76.Distance(toCoord(a), toCoord(b))
	if math.IsNaN(d) {
		return e.Sphere.Distance(a, b)
	}
	return d
}

func toCoord(p Point) globe.Coord {
	return globe.Coord{
		Lat: unit.AngleFromDeg(p.Lat),
		Lon: unit.AngleFromDeg(p.Lon),
	}
}

// ByName resolves a configured model name. radiusKM applies to the
// spherical parts of either model.
func ByName(name string, radiusKM float64) (Model, error) {
	s := Sphere{RadiusKM: radiusKM}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sphere":
		return s, nil
	case "ellipsoid":
		return Ellipsoid{Sphere: s}, nil
	}
	return nil, fmt.Errorf("unknown geodesy model %q", name)
}
