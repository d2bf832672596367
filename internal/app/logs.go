package app

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/large-farva/swath-planner/internal/telemetry"
)

const logBufferSize = 500

type logEntry struct {
	TS        string `json:"ts"`
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// logRing keeps the most recent log entries for /api/logs.
type logRing struct {
	mu      sync.Mutex
	entries []logEntry
	size    int
}

func newLogRing(size int) *logRing {
	return &logRing{size: size}
}

func (r *logRing) add(e logEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	if over := len(r.entries) - r.size; over > 0 {
		r.entries = append(r.entries[:0], r.entries[over:]...)
	}
}

func (r *logRing) snapshot() []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]logEntry(nil), r.entries...)
}

// logHook copies info-and-above log entries into the ring buffer and onto
// the WebSocket as log events.
type logHook struct {
	ring *logRing
	emit func(v any)
}

func (h *logHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel,
		logrus.WarnLevel, logrus.InfoLevel,
	}
}

func (h *logHook) Fire(e *logrus.Entry) error {
	component, _ := e.Data["component"].(string)
	entry := logEntry{
		TS:        e.Time.UTC().Format(time.RFC3339Nano),
		Level:     e.Level.String(),
		Component: component,
		Message:   e.Message,
	}
	h.ring.add(entry)

	ev := telemetry.LogLine{
		Event:   telemetry.New(telemetry.EventLog, component),
		Level:   entry.Level,
		Message: entry.Message,
	}
	ev.TS = entry.TS
	h.emit(ev)
	return nil
}
