// Package app wires configuration into a running engine and HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/skyops/api"
	"github.com/kilianp07/skyops/config"
	"github.com/kilianp07/skyops/core/audit"
	"github.com/kilianp07/skyops/core/conflict"
	"github.com/kilianp07/skyops/core/engine"
	"github.com/kilianp07/skyops/core/events"
	coremetrics "github.com/kilianp07/skyops/core/metrics"
	coremon "github.com/kilianp07/skyops/core/monitoring"
	"github.com/kilianp07/skyops/infra/logger"
	"github.com/kilianp07/skyops/infra/metrics"
	"github.com/kilianp07/skyops/infra/monitoring"
	infraprovider "github.com/kilianp07/skyops/infra/provider"
	"github.com/kilianp07/skyops/internal/eventbus"
)

const shutdownTimeout = 5 * time.Second

// Service owns the engine and everything it reports to.
type Service struct {
	Engine *engine.Engine
	Audit  audit.Store

	cfg  *config.Config
	bus  *eventbus.TypedBus[events.Event]
	sink coremetrics.MetricsSink
	log  logger.Logger
}

// New creates a Service from the configuration. The engine holds no snapshot
// until Refresh or Run is called.
func New(cfg *config.Config) (*Service, error) {
	if !logger.SetLevel(cfg.Logging.Level) {
		return nil, fmt.Errorf("invalid log level %q", cfg.Logging.Level)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := audit.NewStore(cfg.Audit.Module())
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}
	prov, err := infraprovider.New(cfg.Provider)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("provider: %w", err)
	}

	bus := eventbus.NewTyped[events.Event]()
	detector := conflict.New(conflict.WithWeatherTable(cfg.Weather.Table()))
	// Metrics are recorded from the bus by the event collector, not by the
	// engine directly, so each event is counted once.
	eng, err := engine.New(prov, cfg.Engine,
		engine.WithLogger(logger.New("engine")),
		engine.WithEventBus(bus),
		engine.WithAuditStore(store),
		engine.WithDetector(detector),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("engine: %w", err)
	}
	return &Service{Engine: eng, Audit: store, cfg: cfg, bus: bus, sink: sink, log: logg}, nil
}

// Refresh loads the first snapshot and runs a detection pass over it.
func (s *Service) Refresh(ctx context.Context) error {
	rep, err := s.Engine.Refresh(ctx)
	if err != nil {
		return err
	}
	s.log.Infof("snapshot loaded: %d pilots, %d drones, %d missions (%d rows skipped)",
		rep.Pilots, rep.Drones, rep.Missions, len(rep.Warnings))
	res := s.Engine.Detect()
	s.log.Infof("detection: %s", res.Summary)
	return nil
}

// Run refreshes the engine and serves the HTTP API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	collectorDone := metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	srv := &http.Server{
		Addr: s.cfg.HTTP.Addr,
		Handler: api.NewRouter(api.Config{
			Engine:  s.Engine,
			Audit:   s.Audit,
			Metrics: promhttp.Handler(),
			Token:   s.cfg.HTTP.Token,
			Log:     logger.New("api"),
		}),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("http api listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	s.bus.Close()
	<-collectorDone
	return runErr
}

// Close releases the provider, the audit store and the metrics sink.
func (s *Service) Close() error {
	err := s.Engine.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return err
}
