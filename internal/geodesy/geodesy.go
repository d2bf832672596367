// Package geodesy provides the surface geometry the planner needs: great-circle
// distance, initial bearing and destination point. Callers depend on the Model
// interface so the scheduler and edge geometry stay independent of any one
// Earth model.
package geodesy

import "math"

// MeanEarthRadiusKM is the IUGG mean Earth radius.
const MeanEarthRadiusKM = 6371.0088

// Point is a geodetic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Model computes distances and bearings on some Earth surface model.
type Model interface {
	// Distance returns the surface distance between a and b in kilometres.
	Distance(a, b Point) float64
	// Bearing returns the initial compass bearing from a to b in [0, 360).
	Bearing(a, b Point) float64
	// Destination returns the point reached from p after travelling distKM
	// along the given initial bearing.
	Destination(p Point, bearing, distKM float64) Point
}

// Sphere is a spherical Earth of fixed radius.
type Sphere struct {
	RadiusKM float64
}

// Default is the spherical model used unless configured otherwise.
var Default = Sphere{RadiusKM: MeanEarthRadiusKM}

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

func (s Sphere) radius() float64 {
	if s.RadiusKM <= 0 {
		return MeanEarthRadiusKM
	}
	return s.RadiusKM
}

// Distance uses the haversine formula, which is exact for coincident points.
func (s Sphere) Distance(a, b Point) float64 {
	phi1, phi2 := a.Lat*deg2rad, b.Lat*deg2rad
	dPhi := (b.Lat - a.Lat) * deg2rad
	dLambda := wrapPi((b.Lon - a.Lon) * deg2rad)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	if h > 1 {
		h = 1
	}
	return s.radius() * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Bearing is the forward azimuth from a to b.
func (s Sphere) Bearing(a, b Point) float64 {
	phi1, phi2 := a.Lat*deg2rad, b.Lat*deg2rad
	dLambda := (b.Lon - a.Lon) * deg2rad

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	return NormalizeBearing(math.Atan2(y, x) * rad2deg)
}

// Destination solves the direct problem on the sphere.
func (s Sphere) Destination(p Point, bearing, distKM float64) Point {
	delta := distKM / s.radius()
	theta := bearing * deg2rad
	phi1 := p.Lat * deg2rad
	lambda1 := p.Lon * deg2rad

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(clamp(sinPhi2, -1, 1))
	y := math.Sin(theta) * math.Sin(delta) * math.Cos(phi1)
	x := math.Cos(delta) - math.Sin(phi1)*sinPhi2
	lambda2 := lambda1 + math.Atan2(y, x)

	return Point{
		Lat: phi2 * rad2deg,
		Lon: NormalizeLon(lambda2 * rad2deg),
	}
}

// NormalizeBearing folds any angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	b := math.Mod(deg, 360)
	if b < 0 {
		b += 360
	}
	if b >= 360 {
		b -= 360
	}
	return b
}

// NormalizeLon folds a longitude in degrees into [-180, 180].
func NormalizeLon(deg float64) float64 {
	if deg >= -180 && deg <= 180 {
		return deg
	}
	l := math.Mod(deg+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}

// wrapPi handles dateline crossing for longitude differences.
func wrapPi(rad float64) float64 {
	for rad > math.Pi {
		rad -= 2 * math.Pi
	}
	for rad < -math.Pi {
		rad += 2 * math.Pi
	}
	return rad
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
