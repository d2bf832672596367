// Package app wires together the HTTP API, the WebSocket hub, the session
// and the planner. It owns the daemon's lifecycle and is the single source
// of truth for the current operating state.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/large-farva/swath-planner/internal/catalog"
	"github.com/large-farva/swath-planner/internal/config"
	"github.com/large-farva/swath-planner/internal/geodesy"
	"github.com/large-farva/swath-planner/internal/metrics"
	"github.com/large-farva/swath-planner/internal/planner"
	"github.com/large-farva/swath-planner/internal/schedule"
	"github.com/large-farva/swath-planner/internal/session"
	"github.com/large-farva/swath-planner/internal/targets"
	"github.com/large-farva/swath-planner/internal/telemetry"
	"github.com/large-farva/swath-planner/internal/track"
	"github.com/large-farva/swath-planner/internal/ws"
)

const (
	StateBooting  = "BOOTING"
	StateIdle     = "IDLE"
	StatePlanning = "PLANNING"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger     *logrus.Logger
	Cfg        config.Config
	ConfigPath string
	Bind       string

	// Factory overrides the SGP4 propagator, mainly for tests.
	Factory track.Factory
}

// App is the top-level daemon process.
type App struct {
	logger *logrus.Logger
	log    logrus.FieldLogger
	bind   string
	server *http.Server

	cfgMu      sync.RWMutex
	cfg        config.Config
	configPath string
	planner    *planner.Planner
	catalog    *catalog.Store
	runIDs     atomic.Int64
	runBusy    atomic.Bool

	factory track.Factory
	session *session.State

	startedAt time.Time
	state     atomic.Value

	wsHub  *ws.Hub
	logBuf *logRing
}

// New builds an App in the BOOTING state from a validated config. Call Run
// to start serving.
func New(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	a := &App{
		logger:     logger,
		log:        logger.WithField("component", "swathd"),
		bind:       opts.Bind,
		cfg:        opts.Cfg,
		configPath: opts.ConfigPath,
		factory:    opts.Factory,
		startedAt:  time.Now(),
		wsHub:      ws.NewHub(logger),
		logBuf:     newLogRing(logBufferSize),
	}
	a.state.Store(StateBooting)
	logger.AddHook(&logHook{ring: a.logBuf, emit: a.wsHub.BroadcastJSON})

	defaults, err := sessionDefaults(opts.Cfg)
	if err != nil {
		return nil, err
	}
	a.session = session.New(defaults)

	if err := a.applyConfig(opts.Cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// sessionDefaults derives the session seed from the config. A configured
// target file replaces the built-in table.
func sessionDefaults(cfg config.Config) (session.Defaults, error) {
	list := targets.DefaultList()
	if cfg.Targets.File != "" {
		loaded, err := targets.Load(cfg.Targets.File)
		if err != nil {
			return session.Defaults{}, err
		}
		list = loaded
	}
	return session.Defaults{
		Satellites: cfg.Satellites,
		Targets:    list,
		Toggles: session.Toggles{
			ShowEdges:       cfg.Simulation.ShowEdges,
			MergeDuplicates: cfg.Schedule.MergeDuplicateTargets,
		},
	}, nil
}

// applyConfig rebuilds the config-dependent components.
func (a *App) applyConfig(cfg config.Config) error {
	model, err := geodesy.ByName(cfg.Geodesy.Model, cfg.Geodesy.EarthRadiusKM)
	if err != nil {
		return err
	}
	p := planner.New(planner.Options{
		Factory:  a.factory,
		Model:    model,
		Workers:  cfg.Simulation.Workers,
		Events:   a.wsHub,
		Log:      a.logger,
		IDs:      &a.runIDs,
		Busy:     &a.runBusy,
		OnStart:  func() { a.transition(StatePlanning) },
		OnFinish: func() { a.transition(StateIdle) },
	})
	store := catalog.New(cfg.Catalog.URL, cfg.Data.Root, cfg.Catalog.RefreshHours, a.logger)

	if lvl, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		a.logger.SetLevel(lvl)
	}

	a.cfgMu.Lock()
	a.cfg = cfg
	a.planner = p
	a.catalog = store
	a.cfgMu.Unlock()
	return nil
}

func (a *App) getConfig() config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

func (a *App) getPlanner() *planner.Planner {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.planner
}

func (a *App) getCatalog() *catalog.Store {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.catalog
}

// Handler returns the routed API wrapped in the metrics middleware.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/version", a.handleVersion)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/api/config/profiles", a.handleConfigProfiles)
	mux.HandleFunc("/api/logs", a.handleLogs)
	mux.HandleFunc("/api/satellites", a.handleSatellites)
	mux.HandleFunc("/api/targets", a.handleTargets)
	mux.HandleFunc("/api/toggles", a.handleToggles)
	mux.HandleFunc("/api/run", a.handleRun)
	mux.HandleFunc("/api/captures", a.handleCaptures)
	mux.HandleFunc("/api/track", a.handleTrack)
	mux.HandleFunc("/api/map.geojson", a.handleMapGeoJSON)
	mux.HandleFunc("/api/map.svg", a.handleMapSVG)
	mux.HandleFunc("/api/catalog", a.handleCatalog)
	mux.HandleFunc("/api/catalog/refresh", a.handleCatalogRefresh)
	mux.HandleFunc("/api/reset", a.handleReset)
	mux.HandleFunc("/api/reload", a.handleReload)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/ws", a.wsHub.Handler())
	return metrics.Middleware(mux)
}

// Run starts the HTTP server, WebSocket hub and heartbeat ticker. It blocks
// until the context is cancelled or the server returns an error.
func (a *App) Run(ctx context.Context) error {
	bind := a.bind
	if bind == "" {
		bind = a.getConfig().Server.Bind
	}
	if bind == "" {
		bind = "0.0.0.0:8090"
	}

	a.server = &http.Server{
		Addr:              bind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	a.log.Infof("listening on http://%s", bind)

	go a.wsHub.Run(ctx)
	a.transition(StateIdle)
	go a.heartbeatLoop(ctx)

	go func() {
		<-ctx.Done()
		a.log.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)
	}()

	if err := a.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// transition updates the daemon state and broadcasts the change.
func (a *App) transition(newState string) {
	old := a.state.Swap(newState).(string)
	if old == newState {
		return
	}
	a.wsHub.BroadcastJSON(telemetry.StateTransition{
		Event: telemetry.New(telemetry.EventState, "swathd"),
		From:  old,
		To:    newState,
	})
}

// heartbeatLoop sends a periodic heartbeat so clients can detect
// connectivity and track uptime without polling.
func (a *App) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.wsHub.BroadcastJSON(telemetry.Heartbeat{
				Event:         telemetry.New(telemetry.EventHeartbeat, "swathd"),
				State:         a.state.Load().(string),
				UptimeSeconds: int64(time.Since(a.startedAt).Seconds()),
			})
		}
	}
}

// plan runs the planner over the current session and stores the result.
func (a *App) plan(ctx context.Context, ov runOverrides) (*planner.Result, error) {
	cfg := a.getConfig()
	toggles := a.session.Toggles()

	req := planner.Request{
		Satellites:      a.session.Satellites(),
		Targets:         a.session.Targets(),
		DurationMinutes: cfg.Simulation.DurationMinutes,
		StepSeconds:     cfg.Simulation.StepSeconds,
		SwathRadiusKM:   cfg.Simulation.SwathRadiusKM,
		Edges:           toggles.ShowEdges,
		MergeDuplicates: toggles.MergeDuplicates,
	}
	if err := ov.apply(&req); err != nil {
		return nil, err
	}

	res, err := a.getPlanner().Run(ctx, req)
	if err != nil {
		return nil, err
	}
	a.session.SetLastRun(res)
	return res, nil
}

// runOverrides are optional per-run parameters from POST /api/run.
type runOverrides struct {
	Start           string   `json:"start,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	StepSeconds     *int     `json:"step_seconds,omitempty"`
	SwathRadiusKM   *float64 `json:"swath_radius_km,omitempty"`
	ShowEdges       *bool    `json:"show_edges,omitempty"`
	MergeDuplicates *bool    `json:"merge_duplicates,omitempty"`
}

func (o runOverrides) apply(req *planner.Request) error {
	if o.Start != "" {
		t, err := time.Parse(time.RFC3339, o.Start)
		if err != nil {
			return fmt.Errorf("%w: start must be RFC 3339: %v", errBadRequest, err)
		}
		req.Start = t
	}
	if o.DurationMinutes != nil {
		req.DurationMinutes = *o.DurationMinutes
	}
	if o.StepSeconds != nil {
		req.StepSeconds = *o.StepSeconds
	}
	if o.SwathRadiusKM != nil {
		req.SwathRadiusKM = *o.SwathRadiusKM
	}
	if o.ShowEdges != nil {
		req.Edges = *o.ShowEdges
	}
	if o.MergeDuplicates != nil {
		req.MergeDuplicates = *o.MergeDuplicates
	}
	return nil
}

// activeTargets is what the map shows: the last run's list when there is
// one, otherwise the session's current list.
func (a *App) activeTargets(run *session.Run) []schedule.Target {
	if run != nil {
		return run.Targets
	}
	return a.session.Targets()
}
