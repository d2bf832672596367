package ctl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeJSONErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/json-error":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"ok":false,"error":"satellite already in session"}`))
		case "/api/text-error":
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	tests := []struct {
		path string
		want string
	}{
		{"/api/json-error", "HTTP 409 Conflict: satellite already in session"},
		{"/api/text-error", "HTTP 405 Method Not Allowed: method not allowed"},
		{"/api/missing", "HTTP 404 Not Found"},
	}
	for _, tc := range tests {
		var v any
		err := getJSON(srv.URL, tc.path, &v)
		if err == nil || err.Error() != tc.want {
			t.Errorf("%s: err = %v, want %q", tc.path, err, tc.want)
		}
	}
}

// recorder captures the last request body sent to a fake daemon.
type recorder struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func fakeDaemon(t *testing.T, rec *recorder, reply any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.body = nil
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSatAddRequests(t *testing.T) {
	rec := &recorder{}
	srv := fakeDaemon(t, rec, map[string]any{"ok": true, "message": "added N19"})

	if err := SatAdd(srv.URL, SatAddOptions{Name: "N19", NoradID: 33591, JSON: true}); err != nil {
		t.Fatalf("SatAdd: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/api/satellites" {
		t.Fatalf("request = %s %s", rec.method, rec.path)
	}
	if rec.body["norad_id"] != float64(33591) || rec.body["name"] != "N19" {
		t.Errorf("body = %v", rec.body)
	}
	if _, ok := rec.body["line1"]; ok {
		t.Error("catalog add should not send element lines")
	}

	if err := SatAdd(srv.URL, SatAddOptions{Name: "X"}); err == nil {
		t.Error("SatAdd without elements or id should fail")
	}
}

func TestSatRemoveEscapesName(t *testing.T) {
	rec := &recorder{}
	srv := fakeDaemon(t, rec, map[string]any{"ok": true, "message": "removed"})

	if err := SatRemove(srv.URL, "ISS (ZARYA)", true); err != nil {
		t.Fatalf("SatRemove: %v", err)
	}
	if rec.method != http.MethodDelete || rec.query != "name=ISS+%28ZARYA%29" {
		t.Errorf("request = %s ?%s", rec.method, rec.query)
	}
}

func TestRunOptionsBody(t *testing.T) {
	rec := &recorder{}
	srv := fakeDaemon(t, rec, map[string]any{"ok": true, "run": 3, "captures": []any{}})

	opts := RunOptions{DurationMinutes: 45, SwathRadiusKM: 120, NoEdges: true, JSON: true}
	if err := Run(srv.URL, opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := map[string]any{"duration_minutes": float64(45), "swath_radius_km": float64(120), "show_edges": false}
	if len(rec.body) != len(want) {
		t.Fatalf("body = %v", rec.body)
	}
	for k, v := range want {
		if rec.body[k] != v {
			t.Errorf("body[%s] = %v, want %v", k, rec.body[k], v)
		}
	}
}

func TestExportWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/map.svg" || r.URL.Query().Get("w") != "800" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg></svg>\n"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "map.svg")
	if err := Export(srv.URL, ExportOptions{Format: "svg", Output: out, Width: 800}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "<svg></svg>\n" {
		t.Errorf("file = %q", b)
	}

	if err := Export(srv.URL, ExportOptions{Format: "png"}); err == nil || !strings.Contains(err.Error(), "png") {
		t.Errorf("bad format err = %v", err)
	}
}
