// Package telemetry defines the typed events that flow over the WebSocket
// connection between swathd and its clients.
package telemetry

import "time"

// EventType identifies the kind of WebSocket event.
type EventType string

const (
	EventHeartbeat     EventType = "heartbeat"
	EventState         EventType = "state"
	EventLog           EventType = "log"
	EventRunStarted    EventType = "run_started"
	EventProgress      EventType = "progress"
	EventSatelliteDone EventType = "satellite_done"
	EventCapture       EventType = "capture"
	EventRunFinished   EventType = "run_finished"
)

// Event is the base envelope shared by every event type.
type Event struct {
	Type      EventType `json:"type"`
	TS        string    `json:"ts"`
	Component string    `json:"component,omitempty"`
}

// NowTS returns the current UTC time as an RFC 3339 nano string, matching the
// timestamp format used across all events.
func NowTS() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// New stamps an envelope with the current time.
func New(t EventType, component string) Event {
	return Event{Type: t, TS: NowTS(), Component: component}
}

// Heartbeat is sent periodically so clients can detect connectivity and
// monitor daemon uptime.
type Heartbeat struct {
	Event
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// StateTransition is emitted whenever the daemon moves between operating
// states (e.g. IDLE -> PLANNING).
type StateTransition struct {
	Event
	From string `json:"from"`
	To   string `json:"to"`
}

// LogLine carries a human-readable log message at a severity level.
type LogLine struct {
	Event
	Level   string `json:"level"`
	Message string `json:"message"`
}

// RunStarted opens a planning run.
type RunStarted struct {
	Event
	Run         int      `json:"run"`
	Satellites  []string `json:"satellites"`
	Targets     int      `json:"targets"`
	Start       string   `json:"start"`
	DurationMin int      `json:"duration_minutes"`
	StepSeconds int      `json:"step_seconds"`
	RadiusKM    float64  `json:"swath_radius_km"`
}

// Progress reports completed satellites out of the run total.
type Progress struct {
	Event
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Detail  string  `json:"detail"`
}

// SatelliteDone is emitted after a satellite's path has been scheduled.
type SatelliteDone struct {
	Event
	Satellite string `json:"satellite"`
	Points    int    `json:"points"`
	Captures  int    `json:"captures"`
}

// Capture announces one scheduled capture.
type Capture struct {
	Event
	Satellite string  `json:"satellite"`
	Target    string  `json:"target"`
	Index     int     `json:"index"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Time      string  `json:"time"`
}

// RunFinished closes a planning run. Error is set when the run failed.
type RunFinished struct {
	Event
	Run        int     `json:"run"`
	Captures   int     `json:"captures"`
	Captured   int     `json:"captured"`
	Targets    int     `json:"targets"`
	Coverage   float64 `json:"coverage"`
	DurationMS int64   `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}
