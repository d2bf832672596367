// Package session holds the mutable application state of a swath planner
// daemon: the satellites being simulated, any custom targets, display
// toggles and the most recent planning run.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mohae/deepcopy"

	"github.com/large-farva/swath-planner/internal/geodesy"
	"github.com/large-farva/swath-planner/internal/schedule"
	"github.com/large-farva/swath-planner/internal/targets"
	"github.com/large-farva/swath-planner/internal/track"
)

var (
	ErrDuplicateSatellite = errors.New("satellite already in session")
	ErrUnknownSatellite   = errors.New("satellite not in session")
)

// Toggles are the user-facing switches that change how runs are planned and
// drawn.
type Toggles struct {
	ShowEdges       bool `json:"show_edges"`
	MergeDuplicates bool `json:"merge_duplicates"`
}

// SatelliteRun is the outcome of planning one satellite.
type SatelliteRun struct {
	Satellite track.Elements     `json:"satellite"`
	Path      []track.Subpoint   `json:"path"`
	Left      []geodesy.Point    `json:"left,omitempty"`
	Right     []geodesy.Point    `json:"right,omitempty"`
	Captures  []schedule.Capture `json:"captures"`
}

// Run is a completed planning run.
type Run struct {
	ID            int               `json:"id"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	Start         time.Time         `json:"start"`
	DurationMin   int               `json:"duration_minutes"`
	StepSeconds   int               `json:"step_seconds"`
	SwathRadiusKM float64           `json:"swath_radius_km"`
	Targets       []schedule.Target `json:"targets"`
	Satellites    []SatelliteRun    `json:"satellites"`
	Coverage      schedule.Coverage `json:"coverage"`
}

// Captures flattens every satellite's captures, tagged with the satellite
// name, in satellite order.
func (r *Run) Captures() []NamedCapture {
	var out []NamedCapture
	for _, s := range r.Satellites {
		for _, c := range s.Captures {
			out = append(out, NamedCapture{Satellite: s.Satellite.Name, Capture: c})
		}
	}
	return out
}

// NamedCapture is a capture attributed to a satellite.
type NamedCapture struct {
	Satellite string `json:"satellite"`
	schedule.Capture
}

// Satellite returns the run record for name.
func (r *Run) Satellite(name string) (SatelliteRun, bool) {
	for _, s := range r.Satellites {
		if strings.EqualFold(s.Satellite.Name, name) {
			return s, true
		}
	}
	return SatelliteRun{}, false
}

// Defaults seed a new session and are restored by Reset.
type Defaults struct {
	Satellites []track.Elements
	Targets    []schedule.Target
	Toggles    Toggles
}

// State is safe for concurrent use.
type State struct {
	mu sync.RWMutex

	defaults   Defaults
	satellites []track.Elements
	custom     []schedule.Target
	toggles    Toggles
	lastRun    *Run
	runs       int
}

// New returns a session seeded from d.
func New(d Defaults) *State {
	s := &State{defaults: deepcopy.Copy(d).(Defaults)}
	s.resetLocked()
	return s
}

func (s *State) resetLocked() {
	s.satellites = append([]track.Elements(nil), s.defaults.Satellites...)
	s.custom = nil
	s.toggles = s.defaults.Toggles
	s.lastRun = nil
}

// Reset restores the defaults and forgets the last run.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// SetDefaults replaces the seed used by future resets, for example after a
// configuration reload. The live state is left alone.
func (s *State) SetDefaults(d Defaults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = deepcopy.Copy(d).(Defaults)
}

// AddSatellite appends e after validating it. Names are unique,
// case-insensitively.
func (s *State) AddSatellite(e track.Elements) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", track.ErrBadElements)
	}
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(e.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateSatellite, e.Name)
	}
	s.satellites = append(s.satellites, e)
	return nil
}

// RemoveSatellite drops the named satellite.
func (s *State) RemoveSatellite(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSatellite, name)
	}
	s.satellites = append(s.satellites[:i], s.satellites[i+1:]...)
	return nil
}

// ClearSatellites empties the satellite list.
func (s *State) ClearSatellites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.satellites = nil
}

func (s *State) indexLocked(name string) int {
	for i, e := range s.satellites {
		if strings.EqualFold(e.Name, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// Satellites returns a copy of the satellite list in insertion order.
func (s *State) Satellites() []track.Elements {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]track.Elements(nil), s.satellites...)
}

// AddTarget appends a custom target.
func (s *State) AddTarget(t schedule.Target) error {
	if err := targets.Validate(t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom = append(s.custom, t)
	return nil
}

// ClearTargets drops every custom target, reverting to the defaults.
func (s *State) ClearTargets() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom = nil
}

// Targets is the active target list: the custom targets when any have been
// added, the default table otherwise.
func (s *State) Targets() []schedule.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.custom) > 0 {
		return append([]schedule.Target(nil), s.custom...)
	}
	return append([]schedule.Target(nil), s.defaults.Targets...)
}

// CustomTargets reports whether the active list is user supplied.
func (s *State) CustomTargets() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.custom) > 0
}

func (s *State) SetToggles(t Toggles) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles = t
}

func (s *State) Toggles() Toggles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toggles
}

// SetLastRun stores r as the most recent run.
func (s *State) SetLastRun(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.lastRun = r
}

// LastRun returns a deep copy of the most recent run, or nil.
func (s *State) LastRun() *Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return nil
	}
	return deepcopy.Copy(s.lastRun).(*Run)
}

// Snapshot is a point-in-time copy of the whole session.
type Snapshot struct {
	Satellites    []track.Elements  `json:"satellites"`
	Targets       []schedule.Target `json:"targets"`
	CustomTargets bool              `json:"custom_targets"`
	Toggles       Toggles           `json:"toggles"`
	LastRun       *Run              `json:"last_run,omitempty"`
	Runs          int               `json:"runs"`
}

// Snapshot copies the session so callers can read it without holding the
// lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := s.defaults.Targets
	if len(s.custom) > 0 {
		active = s.custom
	}
	snap := Snapshot{
		Satellites:    s.satellites,
		Targets:       active,
		CustomTargets: len(s.custom) > 0,
		Toggles:       s.toggles,
		LastRun:       s.lastRun,
		Runs:          s.runs,
	}
	return deepcopy.Copy(snap).(Snapshot)
}
