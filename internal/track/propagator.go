package track

import (
	"fmt"
	"math"
	"time"

	"github.com/akhenakh/sgp4"

	"github.com/large-farva/swath-planner/internal/geodesy"
)

// Propagator produces the sub-satellite point at an instant.
type Propagator interface {
	Subpoint(t time.Time) (geodesy.Point, error)
}

// Factory builds a propagator for one element set.
type Factory func(Elements) (Propagator, error)

// SGP4 propagates an element set with the SGP4/SDP4 model.
type SGP4 struct {
	tle *sgp4.TLE
}

// NewSGP4 validates and parses the element set. It satisfies Factory.
func NewSGP4(e Elements) (Propagator, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	tle, err := sgp4.ParseTLE(e.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadElements, err)
	}
	return &SGP4{tle: tle}, nil
}

// Subpoint returns the geodetic latitude and longitude beneath the satellite.
func (p *SGP4) Subpoint(t time.Time) (geodesy.Point, error) {
	eci, err := p.tle.FindPositionAtTime(t.UTC())
	if err != nil {
		return geodesy.Point{}, fmt.Errorf("sgp4 at %s: %w", t.UTC().Format(time.RFC3339), err)
	}
	lat, lon, _ := eci.ToGeodetic()
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return geodesy.Point{}, fmt.Errorf("sgp4 at %s: non-finite subpoint", t.UTC().Format(time.RFC3339))
	}
	return geodesy.Point{Lat: lat, Lon: geodesy.NormalizeLon(lon)}, nil
}

// SatelliteNumber is the NORAD catalog number of the parsed element set.
func (p *SGP4) SatelliteNumber() int {
	return p.tle.SatelliteNumber
}
