package catalog

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func catalogServer(t *testing.T, status *atomic.Int32, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if code := int(status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		_, _ = io.WriteString(w, embeddedTLE)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParse(t *testing.T) {
	entries, err := Parse(embeddedTLE)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].NoradID != 25544 || entries[1].NoradID != 33591 {
		t.Fatalf("ids = %d, %d", entries[0].NoradID, entries[1].NoradID)
	}
	if entries[1].Elements.Name != "NOAA 19" {
		t.Errorf("name = %q", entries[1].Elements.Name)
	}
}

func TestParseSkipsGarbage(t *testing.T) {
	raw := "junk header\r\n\r\n" + embeddedTLE + "\nBROKEN\n1 too short\n2 too short\n"
	entries, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	if _, err := Parse("nothing to see here\n"); err == nil {
		t.Fatal("expected error for input without element sets")
	}
}

func TestTieredFallback(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusOK)
	srv := catalogServer(t, &status, &hits)
	dir := t.TempDir()

	// Network first, then the cache it wrote.
	s := New(srv.URL, dir, 24, quietLogger())
	if _, err := s.Entries(); err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if got := s.CacheInfo().Source; got != SourceNetwork {
		t.Fatalf("source = %q, want network", got)
	}
	if _, err := os.Stat(filepath.Join(dir, cacheFile)); err != nil {
		t.Fatalf("cache not written: %v", err)
	}

	s = New(srv.URL, dir, 24, quietLogger())
	if _, err := s.Entries(); err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if got := s.CacheInfo().Source; got != SourceCache {
		t.Fatalf("source = %q, want cache", got)
	}
	if hits.Load() != 1 {
		t.Fatalf("network hits = %d, want 1", hits.Load())
	}

	// Expired cache with the network down.
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, cacheFile), old, old); err != nil {
		t.Fatal(err)
	}
	status.Store(http.StatusServiceUnavailable)
	s = New(srv.URL, dir, 24, quietLogger())
	if _, err := s.Entries(); err != nil {
		t.Fatalf("Entries: %v", err)
	}
	info := s.CacheInfo()
	if info.Source != SourceStale || info.Fresh {
		t.Fatalf("info = %+v, want stale", info)
	}

	// No cache at all.
	s = New(srv.URL, t.TempDir(), 24, quietLogger())
	if _, err := s.Entries(); err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if got := s.CacheInfo().Source; got != SourceEmbedded {
		t.Fatalf("source = %q, want embedded", got)
	}
}

func TestLookup(t *testing.T) {
	s := New("", t.TempDir(), 24, quietLogger())

	e, err := s.Lookup(33591)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if e.Elements.Name != "NOAA 19" {
		t.Errorf("name = %q", e.Elements.Name)
	}
	if err := e.Elements.Validate(); err != nil {
		t.Errorf("looked up elements invalid: %v", err)
	}

	if _, err := s.Lookup(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestForceRefresh(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusOK)
	srv := catalogServer(t, &status, &hits)
	dir := t.TempDir()

	s := New(srv.URL, dir, 24, quietLogger())
	n, err := s.ForceRefresh()
	if err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}
	if n != 2 {
		t.Fatalf("refreshed %d, want 2", n)
	}

	status.Store(http.StatusInternalServerError)
	if _, err := s.ForceRefresh(); err == nil {
		t.Fatal("expected error when the network is down")
	}
	info := s.CacheInfo()
	if info.Entries != 2 || info.Source != SourceNetwork || !info.Exists {
		t.Fatalf("info after failed refresh = %+v", info)
	}
}
