// Package targets supplies ground target lists: the built-in city table,
// YAML target files and a target at the station's current GPS fix.
package targets

import "github.com/large-farva/swath-planner/internal/schedule"

// Defaults is the built-in target table. Several cities appear twice at
// slightly different precision; they are distinct targets.
var Defaults = []schedule.Target{
	{Name: "Canberra", Lat: -35.28, Lon: 149.13},
	{Name: "Cape Town", Lat: -33.92, Lon: 18.42},
	{Name: "Buenos Aires", Lat: -34.60, Lon: -58.38},
	{Name: "Perth", Lat: -31.95, Lon: 115.86},
	{Name: "Harare", Lat: -17.82, Lon: 31.05},
	{Name: "Rio de Janeiro", Lat: -22.91, Lon: -43.17},
	{Name: "Melbourne", Lat: -37.81, Lon: 144.96},
	{Name: "São Paulo", Lat: -23.55, Lon: -46.63},
	{Name: "Brasília", Lat: -15.78, Lon: -47.93},
	{Name: "Johannesburg", Lat: -26.20, Lon: 28.04},
	{Name: "Alaska", Lat: 64.20, Lon: -149.49},
	{Name: "Kathmandu", Lat: 27.72, Lon: 85.32},

	// South Africa cluster
	{Name: "Cape Town", Lat: -33.9249, Lon: 18.4241},
	{Name: "Hermanus", Lat: -34.3568, Lon: 20.0434},
	{Name: "Gansbaai", Lat: -34.7283, Lon: 19.9182},
	{Name: "Bloemfontein", Lat: -29.0852, Lon: 26.1596},

	// River Plate cluster
	{Name: "Montevideo", Lat: -34.9011, Lon: -56.1645},
	{Name: "Buenos Aires", Lat: -34.6132, Lon: -58.3772},
	{Name: "Gualeguaychú", Lat: -33.1445, Lon: -58.3033},

	// Kathmandu valley cluster
	{Name: "Kathmandu", Lat: 27.7172, Lon: 85.3240},
	{Name: "Bhaktapur", Lat: 27.4689, Lon: 85.2799},
	{Name: "Patan", Lat: 27.5336, Lon: 85.3914},

	// Alaska cluster
	{Name: "Anchorage", Lat: 61.2181, Lon: -149.9003},
	{Name: "Wasilla", Lat: 61.5797, Lon: -149.4886},
	{Name: "Kenai", Lat: 60.5544, Lon: -151.2583},

	{Name: "New York", Lat: 40.7128, Lon: -74.0060},
	{Name: "Sydney", Lat: -33.8688, Lon: 151.2093},
	{Name: "Mexico City", Lat: 19.4326, Lon: -99.1332},
	{Name: "London", Lat: 51.5074, Lon: -0.1278},
	{Name: "Buenos Aires", Lat: -34.6037, Lon: -58.3816},
	{Name: "Singapore", Lat: 1.3521, Lon: 103.8198},
	{Name: "Tokyo", Lat: 35.6895, Lon: 139.6917},
	{Name: "São Paulo", Lat: -23.5505, Lon: -46.6333},
	{Name: "Moscow", Lat: 55.7558, Lon: 37.6173},
	{Name: "Rio de Janeiro", Lat: -22.9068, Lon: -43.1729},
	{Name: "Shanghai", Lat: 31.2304, Lon: 121.4737},
	{Name: "Kinshasa", Lat: -4.4419, Lon: 15.2663},
	{Name: "Delhi", Lat: 28.6139, Lon: 77.2090},
	{Name: "San Francisco", Lat: 37.7749, Lon: -122.4194},
	{Name: "Manila", Lat: 14.5995, Lon: 120.9842},
	{Name: "Durban", Lat: -29.8587, Lon: 31.0218},
	{Name: "Jakarta", Lat: -6.2088, Lon: 106.8456},
	{Name: "Madrid", Lat: 40.4168, Lon: -3.7038},
	{Name: "Paris", Lat: 48.8566, Lon: 2.3522},
	{Name: "Edinburgh", Lat: 55.9533, Lon: -3.1883},
	{Name: "Milan", Lat: 45.4642, Lon: 9.1900},
	{Name: "Berlin", Lat: 52.5200, Lon: 13.4050},
	{Name: "Lisbon", Lat: 38.7169, Lon: -9.1399},
}

// DefaultList returns a copy of Defaults safe for the caller to modify.
func DefaultList() []schedule.Target {
	out := make([]schedule.Target, len(Defaults))
	copy(out, Defaults)
	return out
}
