// Package planner runs the path, edge and capture pipeline for every
// satellite in a session and aggregates the outcome into one run record.
// Progress is streamed to WebSocket clients as the run proceeds.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/large-farva/swath-planner/internal/config"
	"github.com/large-farva/swath-planner/internal/geodesy"
	"github.com/large-farva/swath-planner/internal/metrics"
	"github.com/large-farva/swath-planner/internal/schedule"
	"github.com/large-farva/swath-planner/internal/session"
	"github.com/large-farva/swath-planner/internal/telemetry"
	"github.com/large-farva/swath-planner/internal/track"
)

var (
	// ErrOutOfRange is config.ErrOutOfRange, so either name matches with
	// errors.Is.
	ErrOutOfRange   = config.ErrOutOfRange
	ErrNoSatellites = errors.New("no satellites to plan")
	ErrBusy         = errors.New("a run is already in progress")
)

// Result is a finished run.
type Result = session.Run

// Broadcaster receives run events. *ws.Hub satisfies it.
type Broadcaster interface {
	BroadcastJSON(v any)
}

// Options configures a Planner. Zero values fall back to the SGP4
// propagator, the default sphere and one worker.
type Options struct {
	Factory track.Factory
	Model   geodesy.Model
	Workers int
	Events  Broadcaster
	Log     logrus.FieldLogger
	Now     func() time.Time

	// IDs numbers runs. Planners rebuilt on reload share it so run IDs
	// keep increasing.
	IDs *atomic.Int64
	// Busy guards the one-run-at-a-time slot. Share it across rebuilt
	// planners so a reload cannot start a second concurrent run.
	Busy *atomic.Bool

	// OnStart runs once the run slot is claimed and OnFinish when it is
	// released. Neither runs for a rejected request.
	OnStart  func()
	OnFinish func()
}

// Planner is safe for concurrent use but runs one plan at a time.
type Planner struct {
	factory track.Factory
	model   geodesy.Model
	workers int
	events  Broadcaster
	log     logrus.FieldLogger
	now     func() time.Time

	running  *atomic.Bool
	seq      *atomic.Int64
	onStart  func()
	onFinish func()
}

func New(opts Options) *Planner {
	p := &Planner{
		factory:  opts.Factory,
		model:    opts.Model,
		workers:  opts.Workers,
		events:   opts.Events,
		log:      opts.Log,
		now:      opts.Now,
		seq:      opts.IDs,
		running:  opts.Busy,
		onStart:  opts.OnStart,
		onFinish: opts.OnFinish,
	}
	if p.seq == nil {
		p.seq = new(atomic.Int64)
	}
	if p.running == nil {
		p.running = new(atomic.Bool)
	}
	if p.factory == nil {
		p.factory = track.NewSGP4
	}
	if p.model == nil {
		p.model = geodesy.Default
	}
	if p.workers < 1 {
		p.workers = 1
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	p.log = p.log.WithField("component", "planner")
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Request is one planning run. A zero Start means the current minute.
type Request struct {
	Satellites      []track.Elements
	Targets         []schedule.Target
	Start           time.Time
	DurationMinutes int
	StepSeconds     int
	SwathRadiusKM   float64
	Edges           bool
	MergeDuplicates bool
}

// Validate checks the request against the input bounds.
func (r Request) Validate() error {
	if len(r.Satellites) == 0 {
		return ErrNoSatellites
	}
	return config.CheckRun(r.DurationMinutes, r.StepSeconds, r.SwathRadiusKM)
}

// Running reports whether a run is in progress.
func (p *Planner) Running() bool {
	return p.running.Load()
}

// Run plans every satellite in req. Satellites are processed in parallel on
// at most the configured number of workers; the result keeps request order.
// The first failing satellite cancels the others and fails the run.
func (p *Planner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.running.Store(false)
	if p.onStart != nil {
		p.onStart()
	}
	if p.onFinish != nil {
		defer p.onFinish()
	}

	id := int(p.seq.Add(1))
	started := p.now()
	start := req.Start
	if start.IsZero() {
		start = track.DefaultStart(started)
	}
	start = start.UTC()

	window := track.Window{
		Start:    start,
		Duration: time.Duration(req.DurationMinutes) * time.Minute,
		Step:     time.Duration(req.StepSeconds) * time.Second,
	}

	names := make([]string, len(req.Satellites))
	for i, s := range req.Satellites {
		names[i] = s.Name
	}
	log := p.log.WithField("run", id)
	log.WithFields(logrus.Fields{
		"satellites": len(names),
		"targets":    len(req.Targets),
		"start":      start.Format(time.RFC3339),
	}).Info("run started")
	p.emit(telemetry.RunStarted{
		Event:       telemetry.New(telemetry.EventRunStarted, "planner"),
		Run:         id,
		Satellites:  names,
		Targets:     len(req.Targets),
		Start:       start.Format(time.RFC3339),
		DurationMin: req.DurationMinutes,
		StepSeconds: req.StepSeconds,
		RadiusKM:    req.SwathRadiusKM,
	})

	sats, err := p.runAll(ctx, req, window)
	elapsed := time.Since(started)
	metrics.ObserveRun(elapsed, err)
	if err != nil {
		log.WithError(err).Error("run failed")
		p.emit(telemetry.RunFinished{
			Event:      telemetry.New(telemetry.EventRunFinished, "planner"),
			Run:        id,
			Targets:    len(req.Targets),
			DurationMS: elapsed.Milliseconds(),
			Error:      err.Error(),
		})
		return nil, err
	}

	schedules := make([][]schedule.Capture, len(sats))
	total := 0
	for i, s := range sats {
		schedules[i] = s.Captures
		total += len(s.Captures)
	}
	cov := schedule.Summarize(len(req.Targets), schedules...)
	metrics.SetCoverage(cov.Ratio())

	res := &Result{
		ID:            id,
		StartedAt:     started.UTC(),
		FinishedAt:    p.now().UTC(),
		Start:         start,
		DurationMin:   req.DurationMinutes,
		StepSeconds:   req.StepSeconds,
		SwathRadiusKM: req.SwathRadiusKM,
		Targets:       append([]schedule.Target(nil), req.Targets...),
		Satellites:    sats,
		Coverage:      cov,
	}

	log.WithFields(logrus.Fields{
		"captures": total,
		"captured": len(cov.Captured),
		"elapsed":  elapsed.Round(time.Millisecond).String(),
	}).Info("run finished")
	p.emit(telemetry.RunFinished{
		Event:      telemetry.New(telemetry.EventRunFinished, "planner"),
		Run:        id,
		Captures:   total,
		Captured:   len(cov.Captured),
		Targets:    cov.Total,
		Coverage:   cov.Ratio(),
		DurationMS: elapsed.Milliseconds(),
	})
	return res, nil
}

func (p *Planner) runAll(ctx context.Context, req Request, window track.Window) ([]session.SatelliteRun, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := len(req.Satellites)
	results := make([]session.SatelliteRun, n)
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		done     atomic.Int32
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	workers := min(p.workers, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sr, err := p.runOne(ctx, req, req.Satellites[i], window)
				if err != nil {
					fail(fmt.Errorf("%s: %w", req.Satellites[i].Name, err))
					continue
				}
				results[i] = sr
				p.announce(sr, int(done.Add(1)), n)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// runOne is the pipeline for a single satellite: propagate, derive edges,
// schedule.
func (p *Planner) runOne(ctx context.Context, req Request, el track.Elements, window track.Window) (session.SatelliteRun, error) {
	prop, err := p.factory(el)
	if err != nil {
		return session.SatelliteRun{}, err
	}

	path, err := track.Generate(ctx, prop, window)
	if err != nil {
		return session.SatelliteRun{}, err
	}

	sr := session.SatelliteRun{Satellite: el, Path: path}
	if req.Edges {
		sr.Left, sr.Right, err = track.Edges(path, req.SwathRadiusKM, p.model)
		if err != nil {
			return session.SatelliteRun{}, err
		}
	}

	sr.Captures = schedule.Greedy(path, req.Targets, req.SwathRadiusKM, p.model, schedule.Options{
		MergeDuplicates: req.MergeDuplicates,
	})
	if sr.Captures == nil {
		sr.Captures = []schedule.Capture{}
	}
	return sr, nil
}

func (p *Planner) announce(sr session.SatelliteRun, done, total int) {
	name := sr.Satellite.Name
	metrics.ObserveCaptures(name, len(sr.Captures))

	for _, c := range sr.Captures {
		p.emit(telemetry.Capture{
			Event:     telemetry.New(telemetry.EventCapture, "planner"),
			Satellite: name,
			Target:    c.Target.Name,
			Index:     c.Index,
			Lat:       c.Target.Lat,
			Lon:       c.Target.Lon,
			Time:      c.Time.Format(time.RFC3339),
		})
	}
	p.emit(telemetry.SatelliteDone{
		Event:     telemetry.New(telemetry.EventSatelliteDone, "planner"),
		Satellite: name,
		Points:    len(sr.Path),
		Captures:  len(sr.Captures),
	})
	p.emit(telemetry.Progress{
		Event:   telemetry.New(telemetry.EventProgress, "planner"),
		Stage:   "planning",
		Percent: 100 * float64(done) / float64(total),
		Detail:  fmt.Sprintf("%d/%d satellites", done, total),
	})
}

func (p *Planner) emit(v any) {
	if p.events != nil {
		p.events.BroadcastJSON(v)
	}
}
