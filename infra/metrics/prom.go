package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/skyops/core/metrics"
	"github.com/kilianp07/skyops/core/model"
)

// PromSink exposes engine activity as Prometheus metrics.
type PromSink struct {
	conflicts *prometheus.GaugeVec
	detection prometheus.Histogram
	mutations *prometheus.CounterVec
	entities  *prometheus.GaugeVec
	refreshes *prometheus.CounterVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		conflicts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "skyops_conflicts",
			Help: "Conflicts found by the last detection pass",
		}, []string{"severity", "type"}),
		detection: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skyops_detection_duration_seconds",
			Help:    "Duration of detection passes",
			Buckets: prometheus.DefBuckets,
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyops_mutations_total",
			Help: "Provider-backed mutations by operation and outcome",
		}, []string{"operation", "success"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "skyops_registry_entities",
			Help: "Entities held by the current snapshot",
		}, []string{"kind"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skyops_refreshes_total",
			Help: "Snapshot reloads by outcome",
		}, []string{"success"}),
	}
	var err error
	if s.conflicts, err = register(reg, s.conflicts); err != nil {
		return nil, err
	}
	if s.detection, err = register(reg, s.detection); err != nil {
		return nil, err
	}
	if s.mutations, err = register(reg, s.mutations); err != nil {
		return nil, err
	}
	if s.entities, err = register(reg, s.entities); err != nil {
		return nil, err
	}
	if s.refreshes, err = register(reg, s.refreshes); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDetection replaces the conflict gauges with the latest pass.
func (s *PromSink) RecordDetection(ev coremetrics.DetectionStats) error {
	s.conflicts.Reset()
	for _, sev := range model.Severities {
		s.conflicts.WithLabelValues(string(sev), "all").Set(float64(ev.BySeverity[sev]))
	}
	for typ, n := range ev.ByType {
		s.conflicts.WithLabelValues("all", string(typ)).Set(float64(n))
	}
	s.detection.Observe(ev.Duration.Seconds())
	return nil
}

// RecordMutation counts a mutation.
func (s *PromSink) RecordMutation(ev coremetrics.MutationStats) error {
	s.mutations.WithLabelValues(ev.Operation, strconv.FormatBool(ev.Success)).Inc()
	return nil
}

// RecordRefresh counts a reload and, on success, updates the entity gauges.
func (s *PromSink) RecordRefresh(ev coremetrics.RefreshStats) error {
	s.refreshes.WithLabelValues(strconv.FormatBool(ev.Success)).Inc()
	if !ev.Success {
		return nil
	}
	s.entities.WithLabelValues("pilot").Set(float64(ev.Pilots))
	s.entities.WithLabelValues("drone").Set(float64(ev.Drones))
	s.entities.WithLabelValues("mission").Set(float64(ev.Missions))
	return nil
}
