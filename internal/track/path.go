package track

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/large-farva/swath-planner/internal/geodesy"
)

// ErrEmptyPath is returned when an operation needs at least one subpoint.
var ErrEmptyPath = errors.New("empty path")

// Subpoint is the point on the surface beneath a satellite at one instant.
type Subpoint struct {
	Time time.Time `json:"time"`
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
}

// Point drops the timestamp.
func (s Subpoint) Point() geodesy.Point {
	return geodesy.Point{Lat: s.Lat, Lon: s.Lon}
}

// Window is the sampling grid for a ground track.
type Window struct {
	Start    time.Time
	Duration time.Duration
	Step     time.Duration
}

// Samples is the number of subpoints a window yields: floor(Duration/Step).
func (w Window) Samples() int {
	if w.Step <= 0 || w.Duration <= 0 {
		return 0
	}
	return int(w.Duration / w.Step)
}

// DefaultStart is the current UTC time truncated to the minute.
func DefaultStart(now time.Time) time.Time {
	return now.UTC().Truncate(time.Minute)
}

// Generate samples the propagator over the window. Subpoints are strictly
// increasing in time at a fixed step. Any propagation failure aborts the
// whole path.
func Generate(ctx context.Context, prop Propagator, w Window) ([]Subpoint, error) {
	n := w.Samples()
	if n == 0 {
		return nil, fmt.Errorf("window %s/%s: %w", w.Duration, w.Step, ErrEmptyPath)
	}

	start := w.Start.UTC()
	path := make([]Subpoint, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := start.Add(time.Duration(i) * w.Step)
		p, err := prop.Subpoint(t)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		path = append(path, Subpoint{Time: t, Lat: p.Lat, Lon: p.Lon})
	}
	return path, nil
}
