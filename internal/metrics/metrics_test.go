package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMiddlewareAndHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	mux.Handle("/metrics", Handler())
	srv := httptest.NewServer(Middleware(mux))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/teapot")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	ObserveRun(20*time.Millisecond, nil)
	ObserveRun(time.Millisecond, errors.New("boom"))
	ObserveCaptures("ISS (ZARYA)", 3)
	SetCoverage(0.5)

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`swath_http_requests_total{code="418",method="GET",path="/teapot"} 1`,
		`swath_runs_total{outcome="error"} 1`,
		`swath_captures_total{satellite="ISS (ZARYA)"} 3`,
		`swath_last_run_coverage_ratio 0.5`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
