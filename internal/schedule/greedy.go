// Package schedule assigns ground targets to the first subpoint of a ground
// track that brings them inside the swath.
package schedule

import (
	"time"

	"github.com/large-farva/swath-planner/internal/geodesy"
	"github.com/large-farva/swath-planner/internal/track"
)

// Target is a ground location to be imaged. Name is for display only; a
// target's identity is its position in the list handed to Greedy.
type Target struct {
	Name string  `json:"name,omitempty" yaml:"name,omitempty"`
	Lat  float64 `json:"lat"            yaml:"lat"`
	Lon  float64 `json:"lon"            yaml:"lon"`
}

// Point drops the name.
func (t Target) Point() geodesy.Point {
	return geodesy.Point{Lat: t.Lat, Lon: t.Lon}
}

// Capture records that the target at Index was inside the swath at Time.
type Capture struct {
	Target Target    `json:"target"`
	Index  int       `json:"index"`
	Time   time.Time `json:"time"`
}

// Options tune the sweep.
type Options struct {
	// MergeDuplicates treats targets with equal coordinates as one: only the
	// first of the group is reported and the whole group is retired with it.
	MergeDuplicates bool
}

// Greedy runs a single forward sweep over path. At each subpoint every
// remaining target within radiusKM (inclusive) is captured at that
// subpoint's time, in input order, and retired once the subpoint is done.
// The sweep stops as soon as no targets remain.
//
// The result is ordered by capture time, then by input order. Every target
// appears at most once.
func Greedy(path []track.Subpoint, targets []Target, radiusKM float64, model geodesy.Model, opts Options) []Capture {
	remaining := make([]int, 0, len(targets))
	for i := range targets {
		remaining = append(remaining, i)
	}

	var captured []Capture
	for _, sp := range path {
		if len(remaining) == 0 {
			break
		}
		origin := sp.Point()

		retired := make(map[int]bool)
		for _, idx := range remaining {
			if retired[idx] {
				continue
			}
			t := targets[idx]
			if model.Distance(origin, t.Point()) > radiusKM {
				continue
			}
			captured = append(captured, Capture{Target: t, Index: idx, Time: sp.Time})
			retired[idx] = true
			if opts.MergeDuplicates {
				for _, other := range remaining {
					if other != idx && samePoint(targets[other], t) {
						retired[other] = true
					}
				}
			}
		}

		if len(retired) == 0 {
			continue
		}
		kept := remaining[:0]
		for _, idx := range remaining {
			if !retired[idx] {
				kept = append(kept, idx)
			}
		}
		remaining = kept
	}
	return captured
}

func samePoint(a, b Target) bool {
	return a.Lat == b.Lat && a.Lon == b.Lon
}
