package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/large-farva/swath-planner/internal/catalog"
	"github.com/large-farva/swath-planner/internal/config"
	"github.com/large-farva/swath-planner/internal/planner"
	"github.com/large-farva/swath-planner/internal/render"
	"github.com/large-farva/swath-planner/internal/schedule"
	"github.com/large-farva/swath-planner/internal/session"
	"github.com/large-farva/swath-planner/internal/targets"
	"github.com/large-farva/swath-planner/internal/track"
)

var (
	errBadRequest = errors.New("bad request")
	errNoRun      = errors.New("no run yet, POST /api/run first")
)

// ---------------------------------------------------------------------------
// Core handlers
// ---------------------------------------------------------------------------

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	// If the client asks for JSON, return component-level health checks.
	if r.Header.Get("Accept") == "application/json" {
		a.handleHealthDetailed(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (a *App) handleHealthDetailed(w http.ResponseWriter, _ *http.Request) {
	cfg := a.getConfig()

	checks := map[string]any{}
	allOK := true

	// Data directory holds the catalog cache.
	if err := os.MkdirAll(cfg.Data.Root, 0o755); err != nil {
		checks["data_dir"] = map[string]any{"ok": false, "error": err.Error()}
		allOK = false
	} else {
		tmpPath := filepath.Join(cfg.Data.Root, ".healthcheck")
		if err := os.WriteFile(tmpPath, []byte("ok"), 0o644); err != nil {
			checks["data_dir"] = map[string]any{"ok": false, "error": err.Error()}
			allOK = false
		} else {
			os.Remove(tmpPath)
			checks["data_dir"] = map[string]any{"ok": true, "path": cfg.Data.Root}
		}
	}

	// A stale or missing catalog is reported but not fatal: the embedded
	// set still serves lookups.
	info := a.getCatalog().CacheInfo()
	checks["catalog_cache"] = map[string]any{
		"ok":     true,
		"exists": info.Exists,
		"fresh":  info.Fresh,
		"age_s":  info.AgeSeconds,
	}

	if du := diskUsage(cfg.Data.Root); du != nil {
		full := du.UsedPercent >= diskFullPercent
		checks["disk"] = map[string]any{"ok": !full, "used_percent": du.UsedPercent}
		if full {
			allOK = false
		}
	}

	sats := len(a.session.Satellites())
	checks["satellites"] = map[string]any{"ok": sats > 0, "count": sats}
	if sats == 0 {
		allOK = false
	}

	a.cfgMu.RLock()
	configPath := a.configPath
	a.cfgMu.RUnlock()
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			checks["config_file"] = map[string]any{"ok": false, "error": err.Error()}
			allOK = false
		} else {
			checks["config_file"] = map[string]any{"ok": true, "path": configPath}
		}
	}

	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"healthy": allOK,
		"checks":  checks,
	})
}

func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	cfg := a.getConfig()
	snap := a.session.Snapshot()

	names := make([]string, len(snap.Satellites))
	for i, s := range snap.Satellites {
		names[i] = s.Name
	}

	resp := map[string]any{
		"name":           "swath-planner",
		"state":          a.state.Load().(string),
		"uptime_seconds": int64(time.Since(a.startedAt).Seconds()),
		"data_root":      cfg.Data.Root,
		"satellites":     names,
		"targets":        len(snap.Targets),
		"custom_targets": snap.CustomTargets,
		"toggles":        snap.Toggles,
		"runs":           snap.Runs,
		"ws_clients":     a.wsHub.Clients(),
		"simulation":     cfg.Simulation,
	}

	if run := snap.LastRun; run != nil {
		resp["last_run"] = runSummary(run)
	}

	if du := diskUsage(cfg.Data.Root); du != nil {
		resp["disk"] = du
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildVersion())
}

func (a *App) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.getConfig())
}

func (a *App) handleConfigProfiles(w http.ResponseWriter, _ *http.Request) {
	profiles, err := config.ListProfiles(config.DefaultConfigDir())
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"config_dir": config.DefaultConfigDir(),
		"profiles":   profiles,
	})
}

func (a *App) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := a.logBuf.snapshot()

	if levelFilter := r.URL.Query().Get("level"); levelFilter != "" {
		var filtered []logEntry
		for _, e := range entries {
			if e.Level == levelFilter {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n < len(entries) {
			entries = entries[len(entries)-n:]
		}
	}
	if entries == nil {
		entries = []logEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// ---------------------------------------------------------------------------
// Session: satellites, targets, toggles
// ---------------------------------------------------------------------------

type satelliteJSON struct {
	Name    string `json:"name"`
	NoradID int    `json:"norad_id"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
}

func (a *App) handleSatellites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sats := a.session.Satellites()
		out := make([]satelliteJSON, len(sats))
		for i, s := range sats {
			out[i] = satelliteJSON{Name: s.Name, NoradID: s.CatalogNumber(), Line1: s.Line1, Line2: s.Line2}
		}
		writeJSON(w, http.StatusOK, map[string]any{"satellites": out})

	case http.MethodPost:
		var req struct {
			Name    string `json:"name"`
			Line1   string `json:"line1"`
			Line2   string `json:"line2"`
			NoradID int    `json:"norad_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}

		el := track.Elements{Name: req.Name, Line1: req.Line1, Line2: req.Line2}
		if req.NoradID != 0 {
			entry, err := a.getCatalog().Lookup(req.NoradID)
			if err != nil {
				writeError(w, err)
				return
			}
			el = entry.Elements
			if req.Name != "" {
				el.Name = req.Name
			}
		}

		if err := a.session.AddSatellite(el); err != nil {
			writeError(w, err)
			return
		}
		a.log.WithField("satellite", el.Name).Info("satellite added")
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "message": "added " + el.Name})

	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if name == "" {
			a.session.ClearSatellites()
			a.log.Info("satellites cleared")
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "satellites cleared"})
			return
		}
		if err := a.session.RemoveSatellite(name); err != nil {
			writeError(w, err)
			return
		}
		a.log.WithField("satellite", name).Info("satellite removed")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "removed " + name})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// targetBody is a target as posted by clients. Missing coordinates are an
// error rather than a target at (0, 0).
type targetBody struct {
	Name string   `json:"name,omitempty"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

func (b targetBody) target() (schedule.Target, error) {
	if b.Lat == nil || b.Lon == nil {
		return schedule.Target{}, fmt.Errorf("%w: lat and lon are required", errBadRequest)
	}
	t := schedule.Target{Name: b.Name, Lat: *b.Lat, Lon: *b.Lon}
	if err := targets.Validate(t); err != nil {
		return schedule.Target{}, err
	}
	return t, nil
}

func (a *App) handleTargets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"targets": a.session.Targets(),
			"custom":  a.session.CustomTargets(),
		})

	case http.MethodPost:
		var req struct {
			targetBody
			GPSD    bool         `json:"gpsd"`
			Targets []targetBody `json:"targets"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}

		var add []schedule.Target
		if req.GPSD {
			cfg := a.getConfig()
			t, err := targets.FromGPSD(cfg.GPSD.Host, time.Duration(cfg.GPSD.TimeoutSeconds)*time.Second)
			if err != nil {
				jsonError(w, err.Error(), http.StatusBadGateway)
				return
			}
			if req.Name != "" {
				t.Name = req.Name
			}
			add = []schedule.Target{t}
		} else {
			bodies := req.Targets
			if len(bodies) == 0 {
				bodies = []targetBody{req.targetBody}
			}
			for i, b := range bodies {
				t, err := b.target()
				if err != nil {
					writeError(w, fmt.Errorf("target %d: %w", i, err))
					return
				}
				add = append(add, t)
			}
		}

		for _, t := range add {
			if err := a.session.AddTarget(t); err != nil {
				writeError(w, err)
				return
			}
		}
		a.log.WithField("count", len(add)).Info("custom targets added")
		writeJSON(w, http.StatusCreated, map[string]any{
			"ok":      true,
			"added":   add,
			"targets": len(a.session.Targets()),
		})

	case http.MethodDelete:
		a.session.ClearTargets()
		a.log.Info("custom targets cleared")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "custom targets cleared"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *App) handleToggles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.session.Toggles())
	case http.MethodPost:
		t := a.session.Toggles()
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			jsonError(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		a.session.SetToggles(t)
		writeJSON(w, http.StatusOK, t)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ---------------------------------------------------------------------------
// Planning and results
// ---------------------------------------------------------------------------

func (a *App) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var ov runOverrides
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&ov); err != nil {
			jsonError(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	res, err := a.plan(r.Context(), ov)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := runSummary(res)
	resp["ok"] = true
	resp["captures"] = nonNilCaptures(res.Captures())
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleCaptures(w http.ResponseWriter, r *http.Request) {
	run := a.session.LastRun()
	if run == nil {
		writeError(w, errNoRun)
		return
	}

	caps := run.Captures()
	if sat := r.URL.Query().Get("satellite"); sat != "" {
		var filtered []session.NamedCapture
		for _, c := range caps {
			if strings.EqualFold(c.Satellite, sat) {
				filtered = append(filtered, c)
			}
		}
		caps = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run":      run.ID,
		"captures": nonNilCaptures(caps),
		"coverage": run.Coverage,
	})
}

func (a *App) handleTrack(w http.ResponseWriter, r *http.Request) {
	run := a.session.LastRun()
	if run == nil {
		writeError(w, errNoRun)
		return
	}

	name := r.URL.Query().Get("satellite")
	if name == "" && len(run.Satellites) == 1 {
		name = run.Satellites[0].Satellite.Name
	}
	sr, ok := run.Satellite(name)
	if !ok {
		jsonError(w, fmt.Sprintf("satellite %q not in run %d", name, run.ID), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run":       run.ID,
		"satellite": sr.Satellite.Name,
		"path":      sr.Path,
		"left":      sr.Left,
		"right":     sr.Right,
		"captures":  sr.Captures,
	})
}

func (a *App) handleMapGeoJSON(w http.ResponseWriter, _ *http.Request) {
	run := a.session.LastRun()
	b, err := render.GeoJSON(run, a.activeTargets(run))
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(b)
}

func (a *App) handleMapSVG(w http.ResponseWriter, r *http.Request) {
	width, height := 1440, 720
	if v, err := strconv.Atoi(r.URL.Query().Get("w")); err == nil {
		width = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("h")); err == nil {
		height = v
	}

	run := a.session.LastRun()
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(render.SVG(run, a.activeTargets(run), width, height))
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (a *App) handleCatalog(w http.ResponseWriter, r *http.Request) {
	store := a.getCatalog()
	entries, err := store.Entries()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if q := strings.ToUpper(r.URL.Query().Get("q")); q != "" {
		var filtered []catalog.Entry
		for _, e := range entries {
			if strings.Contains(strings.ToUpper(e.Elements.Name), q) || strconv.Itoa(e.NoradID) == q {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cache":   store.CacheInfo(),
		"entries": entries,
	})
}

func (a *App) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n, err := a.getCatalog().ForceRefresh()
	if err != nil {
		jsonError(w, "catalog refresh failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	a.log.WithField("entries", n).Info("catalog refreshed")
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                 true,
		"message":            fmt.Sprintf("catalog refreshed, %d element sets", n),
		"satellites_updated": n,
	})
}

// ---------------------------------------------------------------------------
// Lifecycle: reset and reload
// ---------------------------------------------------------------------------

func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.session.Reset()
	a.log.Info("session reset")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "session reset to defaults"})
}

func (a *App) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Optional profile name in the body: {"profile": "south"}
	var body struct {
		Profile string `json:"profile"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	a.cfgMu.RLock()
	loadPath := a.configPath
	a.cfgMu.RUnlock()

	if body.Profile != "" {
		if strings.ContainsAny(body.Profile, `/\`) || strings.Contains(body.Profile, "..") {
			jsonError(w, "invalid profile name", http.StatusBadRequest)
			return
		}
		candidate := config.ProfilePath(config.DefaultConfigDir(), body.Profile)
		if _, err := os.Stat(candidate); err != nil {
			jsonError(w, fmt.Sprintf("profile %q not found at %s", body.Profile, candidate), http.StatusNotFound)
			return
		}
		loadPath = candidate
	}

	if loadPath == "" {
		jsonError(w, "no config file path set", http.StatusInternalServerError)
		return
	}

	newCfg, err := config.Load(loadPath)
	if err != nil {
		jsonError(w, "config reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defaults, err := sessionDefaults(newCfg)
	if err != nil {
		jsonError(w, "config reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := a.applyConfig(newCfg); err != nil {
		jsonError(w, "config reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	a.session.SetDefaults(defaults)

	a.cfgMu.Lock()
	a.configPath = loadPath
	a.cfgMu.Unlock()

	a.log.Infof("config reloaded from %s", loadPath)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "configuration reloaded from " + loadPath,
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func runSummary(run *session.Run) map[string]any {
	total := 0
	perSat := make([]map[string]any, len(run.Satellites))
	for i, s := range run.Satellites {
		total += len(s.Captures)
		perSat[i] = map[string]any{
			"name":     s.Satellite.Name,
			"points":   len(s.Path),
			"captures": len(s.Captures),
		}
	}
	return map[string]any{
		"run":              run.ID,
		"start":            run.Start.Format(time.RFC3339),
		"finished_at":      run.FinishedAt.Format(time.RFC3339),
		"duration_minutes": run.DurationMin,
		"step_seconds":     run.StepSeconds,
		"swath_radius_km":  run.SwathRadiusKM,
		"satellites":       perSat,
		"total_captures":   total,
		"coverage":         run.Coverage,
		"coverage_ratio":   run.Coverage.Ratio(),
	}
}

func nonNilCaptures(c []session.NamedCapture) []session.NamedCapture {
	if c == nil {
		return []session.NamedCapture{}
	}
	return c
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, planner.ErrOutOfRange),
		errors.Is(err, planner.ErrNoSatellites),
		errors.Is(err, track.ErrBadElements),
		errors.Is(err, targets.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrUnknownSatellite),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, errNoRun):
		return http.StatusNotFound
	case errors.Is(err, session.ErrDuplicateSatellite),
		errors.Is(err, planner.ErrBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	jsonError(w, err.Error(), statusFor(err))
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{
		"ok":    false,
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
