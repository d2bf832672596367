// Package catalog downloads and caches bulk element-set catalogs so
// satellites can be added to a session by NORAD catalog number instead of
// pasting element lines.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akhenakh/sgp4"
	"github.com/sirupsen/logrus"

	"github.com/large-farva/swath-planner/internal/track"
)

//go:embed default_tle.txt
var embeddedTLE string

const cacheFile = "catalog_tle.txt"

// ErrNotFound is returned by Lookup for catalog numbers not in the catalog.
var ErrNotFound = errors.New("not in catalog")

// Source names the tier the current catalog was loaded from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceNetwork  Source = "network"
	SourceStale    Source = "stale_cache"
	SourceEmbedded Source = "embedded"
)

// Entry is one parsed catalog element set.
type Entry struct {
	NoradID  int            `json:"norad_id"`
	Elements track.Elements `json:"elements"`
}

// Store fetches and caches a CelesTrak-style three-line catalog. It uses a
// tiered fallback: fresh disk cache, network fetch, stale disk cache, and
// finally the element sets embedded in the binary.
type Store struct {
	url      string
	dataRoot string
	maxAge   time.Duration
	client   *http.Client
	log      logrus.FieldLogger

	mu       sync.Mutex
	entries  []Entry
	byID     map[int]int
	source   Source
	loadedAt time.Time
}

// New returns a store that fetches from url and caches under dataRoot.
func New(url, dataRoot string, refreshHours int, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		url:      url,
		dataRoot: dataRoot,
		maxAge:   time.Duration(refreshHours) * time.Hour,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      logger.WithField("component", "catalog"),
	}
}

func (s *Store) cachePath() string {
	return filepath.Join(s.dataRoot, cacheFile)
}

// Entries returns the catalog sorted by NORAD ID, loading it on first use.
func (s *Store) Entries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLocked(); err != nil {
		return nil, err
	}
	return append([]Entry(nil), s.entries...), nil
}

// Lookup returns the element set for a NORAD catalog number.
func (s *Store) Lookup(noradID int) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLocked(); err != nil {
		return Entry{}, err
	}
	i, ok := s.byID[noradID]
	if !ok {
		return Entry{}, fmt.Errorf("norad id %d: %w", noradID, ErrNotFound)
	}
	return s.entries[i], nil
}

// ForceRefresh fetches from the network regardless of cache age and returns
// the number of element sets loaded. The in-memory catalog is left
// untouched on failure.
func (s *Store) ForceRefresh() (int, error) {
	body, err := s.fetchFromNetwork()
	if err != nil {
		return 0, err
	}
	entries, err := Parse(body)
	if err != nil {
		return 0, err
	}
	if err := s.writeCache(body); err != nil {
		s.log.WithError(err).Warn("catalog cache write failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(entries, SourceNetwork)
	return len(entries), nil
}

// CacheInfo describes the on-disk cache and the loaded catalog.
type CacheInfo struct {
	URL        string  `json:"url"`
	Path       string  `json:"path"`
	Exists     bool    `json:"exists"`
	AgeSeconds int64   `json:"age_seconds,omitempty"`
	Fresh      bool    `json:"fresh"`
	Source     Source  `json:"source,omitempty"`
	Entries    int     `json:"entries"`
	LoadedAt   *string `json:"loaded_at,omitempty"`
}

func (s *Store) CacheInfo() CacheInfo {
	info := CacheInfo{URL: s.url, Path: s.cachePath()}
	if st, err := os.Stat(info.Path); err == nil {
		age := time.Since(st.ModTime())
		info.Exists = true
		info.AgeSeconds = int64(age.Seconds())
		info.Fresh = age < s.maxAge
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	info.Source = s.source
	info.Entries = len(s.entries)
	if !s.loadedAt.IsZero() {
		ts := s.loadedAt.UTC().Format(time.RFC3339)
		info.LoadedAt = &ts
	}
	return info
}

func (s *Store) ensureLocked() error {
	if s.entries != nil {
		return nil
	}
	raw, src, err := s.loadOrFetch()
	if err != nil {
		return err
	}
	entries, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("catalog from %s: %w", src, err)
	}
	s.setLocked(entries, src)
	s.log.WithFields(logrus.Fields{"source": src, "entries": len(entries)}).Info("catalog loaded")
	return nil
}

func (s *Store) setLocked(entries []Entry, src Source) {
	s.entries = entries
	s.byID = make(map[int]int, len(entries))
	for i, e := range entries {
		s.byID[e.NoradID] = i
	}
	s.source = src
	s.loadedAt = time.Now()
}

// loadOrFetch walks the fallback chain to get raw catalog text.
func (s *Store) loadOrFetch() (string, Source, error) {
	path := s.cachePath()

	st, err := os.Stat(path)
	if err == nil && time.Since(st.ModTime()) < s.maxAge {
		if b, readErr := os.ReadFile(path); readErr == nil && len(b) > 0 {
			return string(b), SourceCache, nil
		}
	}

	body, fetchErr := s.fetchFromNetwork()
	if fetchErr == nil {
		if err := s.writeCache(body); err != nil {
			s.log.WithError(err).Warn("catalog cache write failed")
		}
		return body, SourceNetwork, nil
	}
	s.log.WithError(fetchErr).Warn("catalog fetch failed, falling back")

	if b, readErr := os.ReadFile(path); readErr == nil && len(b) > 0 {
		return string(b), SourceStale, nil
	}

	if embeddedTLE != "" {
		return embeddedTLE, SourceEmbedded, nil
	}

	return "", "", fmt.Errorf("all catalog sources exhausted: %w", fetchErr)
}

func (s *Store) fetchFromNetwork() (string, error) {
	if s.url == "" {
		return "", errors.New("no catalog url configured")
	}
	resp, err := s.client.Get(s.url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("catalog fetch returned HTTP %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// writeCache writes via a temp file and rename so readers never see a
// partial file.
func (s *Store) writeCache(data string) error {
	path := s.cachePath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "catalog-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Parse reads three-line element groups (name, line 1, line 2). Groups the
// propagator cannot parse are skipped. Later duplicates of a catalog number
// replace earlier ones.
func Parse(raw string) ([]Entry, error) {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimRight(l, "\r \t"); strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	byID := make(map[int]Entry)
	for i := 0; i+2 < len(lines); {
		name := strings.TrimSpace(lines[i])
		l1 := strings.TrimSpace(lines[i+1])
		l2 := strings.TrimSpace(lines[i+2])
		if !strings.HasPrefix(l1, "1 ") || !strings.HasPrefix(l2, "2 ") {
			i++
			continue
		}
		i += 3

		el := track.Elements{Name: name, Line1: l1, Line2: l2}
		if el.Validate() != nil {
			continue
		}
		tle, err := sgp4.ParseTLE(el.String())
		if err != nil {
			continue
		}
		byID[tle.SatelliteNumber] = Entry{NoradID: tle.SatelliteNumber, Elements: el}
	}

	if len(byID) == 0 {
		return nil, fmt.Errorf("no element sets found in %d lines of input", len(lines))
	}

	entries := make([]Entry, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].NoradID < entries[j].NoradID })
	return entries, nil
}
