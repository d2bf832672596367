package track

import "github.com/large-farva/swath-planner/internal/geodesy"

// Edges offsets every subpoint by radiusKM perpendicular to the local
// ground-track heading. The heading at i is the bearing towards i+1; the last
// subpoint reuses the bearing from its predecessor. A single-point path has
// no heading and is treated as heading north.
//
// Both returned slices are index-aligned with path.
func Edges(path []Subpoint, radiusKM float64, model geodesy.Model) (left, right []geodesy.Point, err error) {
	if len(path) == 0 {
		return nil, nil, ErrEmptyPath
	}

	left = make([]geodesy.Point, len(path))
	right = make([]geodesy.Point, len(path))

	for i, sp := range path {
		heading := Heading(path, i, model)
		origin := sp.Point()
		left[i] = model.Destination(origin, geodesy.NormalizeBearing(heading-90), radiusKM)
		right[i] = model.Destination(origin, geodesy.NormalizeBearing(heading+90), radiusKM)
	}
	return left, right, nil
}

// Heading is the ground-track bearing at index i.
func Heading(path []Subpoint, i int, model geodesy.Model) float64 {
	switch {
	case len(path) < 2:
		return 0
	case i < len(path)-1:
		return model.Bearing(path[i].Point(), path[i+1].Point())
	default:
		return model.Bearing(path[i-1].Point(), path[i].Point())
	}
}
