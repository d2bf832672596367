package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseLayersOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[simulation]
duration_minutes = 120
swath_radius_km = 150

[schedule]
merge_duplicate_targets = true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Simulation.DurationMinutes != 120 {
		t.Errorf("duration = %d, want 120", cfg.Simulation.DurationMinutes)
	}
	if cfg.Simulation.SwathRadiusKM != 150 {
		t.Errorf("swath radius = %v, want 150", cfg.Simulation.SwathRadiusKM)
	}
	if cfg.Simulation.StepSeconds != 60 {
		t.Errorf("step = %d, want default 60", cfg.Simulation.StepSeconds)
	}
	if !cfg.Schedule.MergeDuplicateTargets {
		t.Error("merge_duplicate_targets not applied")
	}
	if len(cfg.Satellites) != 1 {
		t.Errorf("default satellites lost: %d", len(cfg.Satellites))
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{name: "duration too short", toml: "[simulation]\nduration_minutes = 5\n", want: "duration"},
		{name: "duration too long", toml: "[simulation]\nduration_minutes = 241\n", want: "duration"},
		{name: "step too small", toml: "[simulation]\nstep_seconds = 9\n", want: "step"},
		{name: "step too large", toml: "[simulation]\nstep_seconds = 601\n", want: "step"},
		{name: "radius too small", toml: "[simulation]\nswath_radius_km = 9.5\n", want: "swath radius"},
		{name: "radius too large", toml: "[simulation]\nswath_radius_km = 200.5\n", want: "swath radius"},
		{name: "radius not a number", toml: "[simulation]\nswath_radius_km = nan\n", want: "swath radius"},
		{name: "no workers", toml: "[simulation]\nworkers = 0\n", want: "workers"},
		{name: "bad level", toml: "[logging]\nlevel = \"loud\"\n", want: "logging.level"},
		{name: "bad format", toml: "[logging]\nformat = \"xml\"\n", want: "logging.format"},
		{name: "bad geodesy model", toml: "[geodesy]\nmodel = \"flat\"\n", want: "geodesy.model"},
		{name: "empty root", toml: "[data]\nroot = \"\"\n", want: "data.root"},
		{
			name: "bad satellite",
			toml: "[[satellites]]\nname = \"X\"\nline1 = \"1 short\"\nline2 = \"2 short\"\n",
			want: "satellites[0]",
		},
		{name: "malformed toml", toml: "[simulation\n", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.toml))
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != "" && !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCheckRunBounds(t *testing.T) {
	if err := CheckRun(10, 10, 10); err != nil {
		t.Fatalf("lower bounds rejected: %v", err)
	}
	if err := CheckRun(240, 600, 200); err != nil {
		t.Fatalf("upper bounds rejected: %v", err)
	}
	if err := CheckRun(9, 60, 75); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if err := CheckRun(30, 60, math.NaN()); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("NaN radius err = %v, want ErrOutOfRange", err)
	}
}

func TestLoadAndProfiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"south.toml", "north.toml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[server]\nbind = \"127.0.0.1:9999\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := Load(ProfilePath(dir, "north"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Bind != "127.0.0.1:9999" {
		t.Errorf("bind = %q", cfg.Server.Bind)
	}

	profiles, err := ListProfiles(dir)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(profiles) != 2 || profiles[0].Name != "north" || profiles[1].Name != "south" {
		t.Fatalf("profiles = %+v", profiles)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
