// Package config handles loading, defaulting, and validation of the swath
// planner TOML configuration file. Every section maps to a typed struct so the
// rest of the codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/large-farva/swath-planner/internal/geodesy"
	"github.com/large-farva/swath-planner/internal/track"
)

// Input bounds for a planning run.
const (
	MinDurationMinutes = 10
	MaxDurationMinutes = 240
	MinStepSeconds     = 10
	MaxStepSeconds     = 600
	MinSwathRadiusKM   = 10
	MaxSwathRadiusKM   = 200
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Data       DataConfig       `toml:"data"       json:"data"`
	Logging    LoggingConfig    `toml:"logging"    json:"logging"`
	Server     ServerConfig     `toml:"server"     json:"server"`
	Simulation SimulationConfig `toml:"simulation" json:"simulation"`
	Schedule   ScheduleConfig   `toml:"schedule"   json:"schedule"`
	Geodesy    GeodesyConfig    `toml:"geodesy"    json:"geodesy"`
	Catalog    CatalogConfig    `toml:"catalog"    json:"catalog"`
	Targets    TargetsConfig    `toml:"targets"    json:"targets"`
	GPSD       GPSDConfig       `toml:"gpsd"       json:"gpsd"`

	// Satellites seeds the session at startup and on reset.
	Satellites []track.Elements `toml:"satellites" json:"satellites"`
}

type DataConfig struct {
	Root string `toml:"root" json:"root"`
}

type LoggingConfig struct {
	Level  string `toml:"level"  json:"level"`
	Format string `toml:"format" json:"format"`
}

type ServerConfig struct {
	Bind string `toml:"bind" json:"bind"`
}

type SimulationConfig struct {
	DurationMinutes int     `toml:"duration_minutes" json:"duration_minutes"`
	StepSeconds     int     `toml:"step_seconds"     json:"step_seconds"`
	SwathRadiusKM   float64 `toml:"swath_radius_km"  json:"swath_radius_km"`
	Workers         int     `toml:"workers"          json:"workers"`
	ShowEdges       bool    `toml:"show_edges"       json:"show_edges"`
}

type ScheduleConfig struct {
	MergeDuplicateTargets bool `toml:"merge_duplicate_targets" json:"merge_duplicate_targets"`
}

type GeodesyConfig struct {
	// Model is "sphere" or "ellipsoid".
	Model         string  `toml:"model"           json:"model"`
	EarthRadiusKM float64 `toml:"earth_radius_km" json:"earth_radius_km"`
}

type CatalogConfig struct {
	URL          string `toml:"url"           json:"url"`
	RefreshHours int    `toml:"refresh_hours" json:"refresh_hours"`
}

type TargetsConfig struct {
	File string `toml:"file" json:"file"`
}

type GPSDConfig struct {
	Host           string `toml:"host"            json:"host"`
	TimeoutSeconds int    `toml:"timeout_seconds" json:"timeout_seconds"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Data: DataConfig{
			Root: "/var/lib/swath-planner",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Bind: "0.0.0.0:8090",
		},
		Simulation: SimulationConfig{
			DurationMinutes: 90,
			StepSeconds:     60,
			SwathRadiusKM:   75,
			Workers:         4,
			ShowEdges:       true,
		},
		Geodesy: GeodesyConfig{
			Model:         "sphere",
			EarthRadiusKM: geodesy.MeanEarthRadiusKM,
		},
		Catalog: CatalogConfig{
			URL:          "https://celestrak.org/NORAD/elements/gp.php?GROUP=stations&FORMAT=tle",
			RefreshHours: 24,
		},
		GPSD: GPSDConfig{
			Host:           "localhost:2947",
			TimeoutSeconds: 10,
		},
		Satellites: DefaultSatellites(),
	}
}

// DefaultSatellites is the seed used when the file lists no satellites.
func DefaultSatellites() []track.Elements {
	return []track.Elements{
		{
			Name:  "ISS (ZARYA)",
			Line1: "1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9994",
			Line2: "2 25544  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533",
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	return Parse(b)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(b []byte) (Config, error) {
	cfg := Default()

	// Array tables append, so the seed list is only applied when the file
	// does not list its own satellites.
	cfg.Satellites = nil
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if len(cfg.Satellites) == 0 {
		cfg.Satellites = DefaultSatellites()
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Data.Root == "" {
		return errors.New("data.root must not be empty")
	}
	switch cfg.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not a known level", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return errors.New("logging.format must be text or json")
	}
	if err := CheckRun(cfg.Simulation.DurationMinutes, cfg.Simulation.StepSeconds, cfg.Simulation.SwathRadiusKM); err != nil {
		return err
	}
	if cfg.Simulation.Workers < 1 {
		return errors.New("simulation.workers must be >= 1")
	}
	if cfg.Geodesy.EarthRadiusKM <= 0 {
		return errors.New("geodesy.earth_radius_km must be > 0")
	}
	if _, err := geodesy.ByName(cfg.Geodesy.Model, cfg.Geodesy.EarthRadiusKM); err != nil {
		return fmt.Errorf("geodesy.model: %w", err)
	}
	if cfg.Catalog.RefreshHours < 1 {
		return errors.New("catalog.refresh_hours must be >= 1")
	}
	if cfg.GPSD.TimeoutSeconds < 1 {
		return errors.New("gpsd.timeout_seconds must be >= 1")
	}
	seen := make(map[string]bool, len(cfg.Satellites))
	for i, sat := range cfg.Satellites {
		if sat.Name == "" {
			return fmt.Errorf("satellites[%d].name must not be empty", i)
		}
		if seen[sat.Name] {
			return fmt.Errorf("satellites[%d]: duplicate name %q", i, sat.Name)
		}
		seen[sat.Name] = true
		if err := sat.Validate(); err != nil {
			return fmt.Errorf("satellites[%d] %s: %w", i, sat.Name, err)
		}
	}
	return nil
}

// ErrOutOfRange marks a run parameter outside its allowed bounds.
var ErrOutOfRange = errors.New("parameter out of range")

// CheckRun validates the run parameters against the input bounds.
func CheckRun(durationMinutes, stepSeconds int, swathRadiusKM float64) error {
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return fmt.Errorf("%w: duration %d min not in [%d, %d]", ErrOutOfRange, durationMinutes, MinDurationMinutes, MaxDurationMinutes)
	}
	if stepSeconds < MinStepSeconds || stepSeconds > MaxStepSeconds {
		return fmt.Errorf("%w: step %d s not in [%d, %d]", ErrOutOfRange, stepSeconds, MinStepSeconds, MaxStepSeconds)
	}
	if math.IsNaN(swathRadiusKM) || swathRadiusKM < MinSwathRadiusKM || swathRadiusKM > MaxSwathRadiusKM {
		return fmt.Errorf("%w: swath radius %.1f km not in [%d, %d]", ErrOutOfRange, swathRadiusKM, MinSwathRadiusKM, MaxSwathRadiusKM)
	}
	return nil
}
