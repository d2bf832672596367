package ctl

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/large-farva/swath-planner/internal/telemetry"
)

// WatchOptions controls the watch command behavior.
type WatchOptions struct {
	Filter []string // event types to show (empty = all)
	JSON   bool     // output raw JSON per event
}

// wsURL turns the daemon's HTTP base URL into its event stream URL.
func wsURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// Watch connects to the daemon's WebSocket endpoint and streams events to
// the terminal in a human-readable format until interrupted.
func Watch(baseURL string, opts WatchOptions) error {
	target, err := wsURL(baseURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if !opts.JSON {
		fmt.Println()
		fmt.Printf("  %s %s\n", colorize(green, "connected"), colorize(dim, target))
		if len(opts.Filter) > 0 {
			fmt.Printf("  %s %s\n", colorize(dim, "filter:"), colorize(dim, strings.Join(opts.Filter, ", ")))
		}
		fmt.Println(rule(50))
		fmt.Println()
	}

	wanted := make(map[telemetry.EventType]bool, len(opts.Filter))
	for _, f := range opts.Filter {
		wanted[telemetry.EventType(strings.TrimSpace(f))] = true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var env telemetry.Event
			if err := json.Unmarshal(msg, &env); err != nil {
				fmt.Printf("  %s\n", string(msg))
				continue
			}
			if len(wanted) > 0 && !wanted[env.Type] {
				continue
			}

			if opts.JSON {
				fmt.Println(string(msg))
			} else if line := renderEvent(env, msg); line != "" {
				fmt.Print(line)
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
		if !opts.JSON {
			fmt.Println()
			fmt.Println(colorize(dim, "  disconnecting..."))
		}
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second),
		)
		return nil
	case <-done:
		return nil
	}
}

// renderEvent formats one event for the terminal. Unknown event types are
// dumped as indented JSON so nothing is lost.
func renderEvent(env telemetry.Event, raw []byte) string {
	ts := colorize(dim, eventClock(env.TS))
	var sb strings.Builder

	switch env.Type {
	case telemetry.EventHeartbeat:
		var ev telemetry.Heartbeat
		if json.Unmarshal(raw, &ev) != nil {
			break
		}
		up := formatDuration(time.Duration(ev.UptimeSeconds) * time.Second)
		fmt.Fprintf(&sb, "  %s %s  %s  up %s\n",
			ts, colorize(dim, "heartbeat"), colorize(stateColor(ev.State), ev.State), colorize(dim, up))
		return sb.String()

	case telemetry.EventState:
		var ev telemetry.StateTransition
		if json.Unmarshal(raw, &ev) != nil {
			break
		}
		fmt.Fprintf(&sb, "  %s %s  %s %s %s\n",
			ts, colorize(bold, "STATE"),
			colorize(stateColor(ev.From), ev.From), colorize(dim, "->"), colorize(stateColor(ev.To), ev.To))
		return sb.String()

	case telemetry.EventLog:
		var ev telemetry.LogLine
		if json.Unmarshal(raw, &ev) != nil {
			break
		}
		src := ""
		if ev.Component != "" {
			src = colorize(dim, "["+ev.Component+"] ")
		}
		fmt.Fprintf(&sb, "  %s %s  %s%s\n", ts, formatLogLevel(ev.Level), src, ev.Message)
		return sb.String()

	case telemetry.EventRunStarted:
		var ev telemetry.RunStarted
		if json.Unmarshal(raw, &ev) != nil {
			break
		}
		fmt.Fprintf(&sb, "\n  %s %s\n", ts, header(fmt.Sprintf("RUN #%d STARTED", ev.Run)))
		fmt.Fprintf(&sb, "    %-14s %s\n", colorize(dim, "Satellites:"), colorize(bold, strings.Join(ev.Satellites, ", ")))
		fmt.Fprintf(&sb, "    %-14s %s\n", colorize(dim, "Targets:"), formatCount(ev.Targets))
		fmt.Fprintf(&sb, "    %-14s %s\n", colorize(dim, "Start:"), formatClock(ev.Start))
		fmt.Fprintf(&sb, "    %-14s %d min at %d s, %.0f km radius\n\n", colorize(dim, "Window:"),
			ev.DurationMin, ev.StepSeconds, ev.RadiusKM)
		return sb.String()

	case telemetry.EventProgress:
		var ev telemetry.Progress
		if json.Unmarshal(raw, &ev) != nil {
			break
		}
		fmt.Fprintf(&sb, "  %s %s  [%s] %3.0f%%  %s\n",
			ts, colorize(cyan, padRight(ev.Stage, 10)), progressBar(int(ev.Percent), 20), ev.Percent, colorize(dim, ev.Detail))
		return sb.String()

	case telemetry.EventSatelliteDone:
		var ev telemetry.SatelliteDone
		if json.Unmarshal(raw, &ev) != nil {
			break
		}
		fmt.Fprintf(&sb, "  %s %s  %s  %s points, %s captures\n",
			ts, colorize(blue, padRight("satellite", 10)), colorize(bold, ev.Satellite),
			formatCount(ev.Points), formatCount(ev.Captures))
		return sb.String()

	case telemetry.EventCapture:
		var ev telemetry.Capture
		if json.Unmarshal(raw, &ev) != nil {
			break
		}
		name := ev.Target
		if name == "" {
			name = fmt.Sprintf("#%d", ev.Index)
		}
		fmt.Fprintf(&sb, "  %s %s  %s %s %s  %s\n",
			ts, colorize(magenta, padRight("capture", 10)), ev.Satellite, colorize(dim, "->"),
			padRight(name, 18), colorize(dim, formatCoord(ev.Lat, ev.Lon)+"  "+formatClock(ev.Time)))
		return sb.String()

	case telemetry.EventRunFinished:
		var ev telemetry.RunFinished
		if json.Unmarshal(raw, &ev) != nil {
			break
		}
		if ev.Error != "" {
			fmt.Fprintf(&sb, "  %s %s  run #%d failed: %s\n\n", ts, colorize(red, "FAILED"), ev.Run, ev.Error)
			return sb.String()
		}
		fmt.Fprintf(&sb, "  %s %s  run #%d: %s captures, %d/%d targets (%s) in %dms\n\n",
			ts, colorize(green, "FINISHED"), ev.Run, formatCount(ev.Captures),
			ev.Captured, ev.Targets, formatPercent(ev.Coverage), ev.DurationMS)
		return sb.String()
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "  " + string(raw) + "\n"
	}
	pretty, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return "  " + string(raw) + "\n"
	}
	return "  " + string(pretty) + "\n"
}

// eventClock shortens an event timestamp to the local wall clock.
func eventClock(ts string) string {
	if ts == "" {
		return strings.Repeat(" ", 8)
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("15:04:05")
}

// formatLogLevel returns a colored, fixed-width log level label.
func formatLogLevel(level string) string {
	switch level {
	case "info":
		return colorize(green, "INFO ")
	case "warn", "warning":
		return colorize(yellow, "WARN ")
	case "error", "fatal", "panic":
		return colorize(red, "ERROR")
	default:
		return padRight(strings.ToUpper(level), 5)
	}
}
