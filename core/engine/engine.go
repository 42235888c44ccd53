// Package engine owns the current registry snapshot and executes typed
// requests against it. Reads work on an immutable snapshot without locking;
// refreshes and mutations are serialized and publish a new snapshot.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/skyops/core/audit"
	"github.com/kilianp07/skyops/core/conflict"
	"github.com/kilianp07/skyops/core/events"
	"github.com/kilianp07/skyops/core/ingest"
	"github.com/kilianp07/skyops/core/logger"
	"github.com/kilianp07/skyops/core/matcher"
	"github.com/kilianp07/skyops/core/metrics"
	"github.com/kilianp07/skyops/core/monitoring"
	"github.com/kilianp07/skyops/core/provider"
	"github.com/kilianp07/skyops/core/registry"
	"github.com/kilianp07/skyops/internal/eventbus"
)

var (
	// ErrWeatherIncompatible rejects a drone assignment whose weather rating
	// does not cover the mission's expected weather.
	ErrWeatherIncompatible = errors.New("drone not rated for mission weather")
	// ErrProvider wraps every failure reported by the provider.
	ErrProvider = errors.New("provider error")
	// ErrUnsupported is returned for requests the engine cannot execute.
	ErrUnsupported = errors.New("unsupported request")
)

// Policy selects how duplicate keys in a snapshot are handled.
type Policy string

const (
	// PolicyReject keeps the previous snapshot when duplicates are found.
	PolicyReject Policy = "reject"
	// PolicyLastWins accepts the snapshot, keeping the last record per key.
	PolicyLastWins Policy = "last_wins"
)

// DefaultProviderTimeout bounds each provider call when no timeout is set.
const DefaultProviderTimeout = 10 * time.Second

// Config holds engine settings.
type Config struct {
	DuplicatePolicy Policy        `json:"duplicate_policy"`
	ProviderTimeout time.Duration `json:"provider_timeout"`
}

// RefreshReport describes the outcome of a Refresh.
type RefreshReport struct {
	Pilots     int                     `json:"pilots"`
	Drones     int                     `json:"drones"`
	Missions   int                     `json:"missions"`
	Warnings   []ingest.Warning        `json:"warnings,omitempty"`
	Duplicates []registry.DuplicateKey `json:"duplicates,omitempty"`
	Dangling   []registry.BackRef      `json:"dangling,omitempty"`
	Duration   time.Duration           `json:"duration"`
	At         time.Time               `json:"at"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.log = logger.OrNop(l) } }

// WithMetrics sets the metrics sink.
func WithMetrics(s metrics.MetricsSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithEventBus publishes engine events on bus.
func WithEventBus(bus *eventbus.TypedBus[events.Event]) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithAuditStore persists detection passes, refreshes and mutations.
func WithAuditStore(s audit.Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.audit = s
		}
	}
}

// WithDetector replaces the default detector.
func WithDetector(d *conflict.Detector) Option {
	return func(e *Engine) {
		if d != nil {
			e.detector = d
		}
	}
}

// WithClock overrides time.Now for events and audit records.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// Engine executes requests against the current snapshot.
type Engine struct {
	provider provider.Provider
	cfg      Config
	parser   *ingest.Parser
	detector *conflict.Detector
	matcher  *matcher.Matcher
	log      logger.Logger
	sink     metrics.MetricsSink
	bus      *eventbus.TypedBus[events.Event]
	audit    audit.Store
	now      func() time.Time

	snap atomic.Pointer[registry.Registry]
	mu   sync.Mutex
	last RefreshReport
}

// New creates an engine backed by p with an empty snapshot. Call Refresh to
// load data.
func New(p provider.Provider, cfg Config, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("engine: nil provider")
	}
	switch cfg.DuplicatePolicy {
	case "":
		cfg.DuplicatePolicy = PolicyReject
	case PolicyReject, PolicyLastWins:
	default:
		return nil, fmt.Errorf("engine: unknown duplicate policy %q", cfg.DuplicatePolicy)
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}
	e := &Engine{
		provider: p,
		cfg:      cfg,
		log:      logger.Nop{},
		sink:     metrics.NopSink{},
		audit:    audit.NopStore{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.detector == nil {
		e.detector = conflict.New()
	}
	e.parser = ingest.New(e.log)
	e.matcher = matcher.New(e.detector.Weather())
	e.snap.Store(registry.Empty())
	return e, nil
}

// Snapshot returns the current registry. It is never nil and never changes.
func (e *Engine) Snapshot() *registry.Registry { return e.snap.Load() }

// LastRefresh returns the report of the most recent successful Refresh.
func (e *Engine) LastRefresh() RefreshReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Refresh loads a snapshot from the provider and swaps it in. On error the
// previous snapshot stays current.
func (e *Engine) Refresh(ctx context.Context) (RefreshReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := e.now()

	rep, reg, err := e.load(ctx)
	rep.Duration = e.now().Sub(start)
	rep.At = start
	if err != nil {
		e.log.Errorf("refresh failed: %v", err)
		monitoring.CaptureException(err, map[string]string{"operation": "refresh"})
		e.recordRefresh(rep, err)
		return rep, err
	}
	e.snap.Store(reg)
	e.last = rep
	e.log.Infof("refresh: %d pilots, %d drones, %d missions (%d warnings)",
		rep.Pilots, rep.Drones, rep.Missions, len(rep.Warnings))
	e.recordRefresh(rep, nil)
	return rep, nil
}

func (e *Engine) load(ctx context.Context) (RefreshReport, *registry.Registry, error) {
	var rep RefreshReport
	pctx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
	defer cancel()
	snap, err := e.provider.Load(pctx)
	if err != nil {
		return rep, nil, fmt.Errorf("%w: load: %w", ErrProvider, err)
	}
	res := e.parser.Parse(snap)
	rep.Warnings = res.Warnings
	reg, err := registry.Build(res.Pilots, res.Drones, res.Missions, res.Refs...)
	var le *registry.LoadError
	if errors.As(err, &le) {
		rep.Duplicates = le.Duplicates
		if e.cfg.DuplicatePolicy == PolicyReject {
			return rep, nil, fmt.Errorf("refresh: %w", err)
		}
		e.log.Warnf("refresh: %v, keeping last occurrence", err)
	} else if err != nil {
		return rep, nil, fmt.Errorf("refresh: %w", err)
	}
	rep.Pilots, rep.Drones, rep.Missions = reg.Counts()
	rep.Dangling = reg.DanglingRefs()
	for _, ref := range rep.Dangling {
		e.log.Warnw("refresh: assignment references unknown mission", map[string]any{
			"kind": string(ref.Kind), "key": ref.Key, "mission_id": ref.MissionID,
		})
	}
	return rep, reg, nil
}

func (e *Engine) recordRefresh(rep RefreshReport, err error) {
	e.publish(events.RefreshEvent{
		Pilots: rep.Pilots, Drones: rep.Drones, Missions: rep.Missions,
		Warnings: len(rep.Warnings), Duplicates: len(rep.Duplicates),
		Err: err, Duration: rep.Duration, At: rep.At,
	})
	if rr, ok := e.sink.(metrics.RefreshRecorder); ok {
		skipped := 0
		for _, w := range rep.Warnings {
			if w.Skipped {
				skipped++
			}
		}
		stats := metrics.RefreshStats{
			Pilots: rep.Pilots, Drones: rep.Drones, Missions: rep.Missions,
			Skipped: skipped, Success: err == nil, Duration: rep.Duration, Time: rep.At,
		}
		if rerr := rr.RecordRefresh(stats); rerr != nil {
			e.log.Errorf("refresh metrics error: %v", rerr)
		}
	}
	rec := audit.Record{
		Timestamp: rep.At,
		Kind:      audit.KindRefresh,
		Success:   err == nil,
		Summary:   fmt.Sprintf("%d pilots, %d drones, %d missions", rep.Pilots, rep.Drones, rep.Missions),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	e.appendAudit(rec)
}

// Detect runs a detection pass over the current snapshot.
func (e *Engine) Detect() conflict.Result {
	return e.detect(e.Snapshot())
}

func (e *Engine) detect(reg *registry.Registry) conflict.Result {
	start := e.now()
	res := e.detector.Detect(reg)
	d := e.now().Sub(start)

	stats := metrics.NewDetectionStats(res.Conflicts, d, start)
	if err := e.sink.RecordDetection(stats); err != nil {
		e.log.Errorf("detection metrics error: %v", err)
	}
	e.publish(events.DetectionEvent{
		Conflicts: stats.Total, BySeverity: stats.BySeverity, ByType: stats.ByType,
		Summary: res.Summary, Duration: d, At: start,
	})
	e.appendAudit(audit.Record{
		Timestamp:  start,
		Kind:       audit.KindDetection,
		MissionIDs: affectedMissions(res),
		Success:    true,
		Conflicts:  len(res.Conflicts),
		Critical:   res.HasCritical,
		Summary:    res.Summary,
	})
	e.log.Debugf("detection: %s in %s", res.Summary, d)
	return res
}

func affectedMissions(res conflict.Result) []string {
	seen := make(map[string]struct{})
	for _, c := range res.Conflicts {
		for _, id := range c.AffectedMissions {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func (e *Engine) appendAudit(rec audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.audit.Append(ctx, rec); err != nil {
		e.log.Errorf("audit append failed: %v", err)
	}
}

// Close closes the provider when it holds resources, then the audit store.
func (e *Engine) Close() error {
	var errs []error
	if c, ok := e.provider.(provider.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, e.audit.Close())
	return errors.Join(errs...)
}
