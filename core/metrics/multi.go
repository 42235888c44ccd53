package metrics

import "errors"

// MultiSink fans events out to several sinks. Every sink is called even if
// an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDetection forwards the pass to all sinks.
func (m *MultiSink) RecordDetection(ev DetectionStats) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordDetection(ev))
	}
	return errors.Join(errs...)
}

// RecordMutation forwards to sinks implementing MutationRecorder.
func (m *MultiSink) RecordMutation(ev MutationStats) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(MutationRecorder); ok {
			errs = append(errs, r.RecordMutation(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordRefresh forwards to sinks implementing RefreshRecorder.
func (m *MultiSink) RecordRefresh(ev RefreshStats) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RefreshRecorder); ok {
			errs = append(errs, r.RecordRefresh(ev))
		}
	}
	return errors.Join(errs...)
}
