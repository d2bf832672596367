package targets

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/large-farva/swath-planner/internal/schedule"
)

// tpvReport is the subset of a gpsd TPV JSON object we need.
type tpvReport struct {
	Class string  `json:"class"`
	Mode  int     `json:"mode"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// FromGPSD connects to gpsd at host:port, enables watch mode and returns a
// target at the first 2D or 3D fix.
func FromGPSD(addr string, timeout time.Duration) (schedule.Target, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return schedule.Target{}, fmt.Errorf("gpsd connect: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return schedule.Target{}, fmt.Errorf("gpsd set deadline: %w", err)
	}

	if _, err := fmt.Fprint(conn, `?WATCH={"enable":true,"json":true};`); err != nil {
		return schedule.Target{}, fmt.Errorf("gpsd watch: %w", err)
	}

	return readFix(conn)
}

// readFix scans gpsd's JSON stream for the first usable TPV report.
func readFix(r io.Reader) (schedule.Target, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var report tpvReport
		if err := json.Unmarshal(scanner.Bytes(), &report); err != nil {
			continue
		}
		if report.Class != "TPV" || report.Mode < 2 {
			continue
		}
		t := schedule.Target{Name: "gpsd fix", Lat: report.Lat, Lon: report.Lon}
		if err := Validate(t); err != nil {
			return schedule.Target{}, fmt.Errorf("gpsd: %w", err)
		}
		return t, nil
	}

	if err := scanner.Err(); err != nil {
		return schedule.Target{}, fmt.Errorf("gpsd read: %w", err)
	}
	return schedule.Target{}, fmt.Errorf("gpsd: stream ended without a fix")
}
