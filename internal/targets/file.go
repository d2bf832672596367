package targets

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/large-farva/swath-planner/internal/schedule"
)

// ErrOutOfRange is returned for coordinates outside the valid lat/lon ranges.
var ErrOutOfRange = errors.New("coordinate out of range")

// Validate checks that a target's coordinates are geodetically valid.
func Validate(t schedule.Target) error {
	if math.IsNaN(t.Lat) || t.Lat < -90 || t.Lat > 90 {
		return fmt.Errorf("%w: latitude %.4f not in [-90, 90]", ErrOutOfRange, t.Lat)
	}
	if math.IsNaN(t.Lon) || t.Lon < -180 || t.Lon > 180 {
		return fmt.Errorf("%w: longitude %.4f not in [-180, 180]", ErrOutOfRange, t.Lon)
	}
	return nil
}

// fileFormat accepts either a bare list or a document with a targets key.
type fileFormat struct {
	Targets []schedule.Target `yaml:"targets"`
}

// Load reads a YAML target file. Both of these shapes are accepted:
//
//	- {name: Canberra, lat: -35.28, lon: 149.13}
//
//	targets:
//	  - {name: Canberra, lat: -35.28, lon: 149.13}
func Load(path string) ([]schedule.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML target data and validates every entry.
func Parse(data []byte) ([]schedule.Target, error) {
	var list []schedule.Target
	if err := yaml.Unmarshal(data, &list); err != nil {
		var doc fileFormat
		if docErr := yaml.Unmarshal(data, &doc); docErr != nil {
			return nil, fmt.Errorf("failed to unmarshal targets: %w", err)
		}
		list = doc.Targets
	}

	for i, t := range list {
		if err := Validate(t); err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
	}
	return list, nil
}
