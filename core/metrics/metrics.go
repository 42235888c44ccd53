package metrics

import (
	"time"

	"github.com/kilianp07/skyops/core/model"
)

// DetectionStats summarizes one detection pass.
type DetectionStats struct {
	Total      int
	BySeverity map[model.Severity]int
	ByType     map[model.ConflictType]int
	Duration   time.Duration
	Time       time.Time
}

// MetricsSink records detection passes. It is the only method every sink
// must implement; the other recorders are optional.
type MetricsSink interface {
	RecordDetection(ev DetectionStats) error
}

// MutationStats describes a provider-backed mutation.
type MutationStats struct {
	Operation string
	Success   bool
	Duration  time.Duration
	Time      time.Time
}

// MutationRecorder records mutations.
type MutationRecorder interface {
	RecordMutation(ev MutationStats) error
}

// RefreshStats describes a snapshot reload.
type RefreshStats struct {
	Pilots   int
	Drones   int
	Missions int
	Skipped  int
	Success  bool
	Duration time.Duration
	Time     time.Time
}

// RefreshRecorder records snapshot reloads.
type RefreshRecorder interface {
	RecordRefresh(ev RefreshStats) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDetection(DetectionStats) error { return nil }
func (NopSink) RecordMutation(MutationStats) error   { return nil }
func (NopSink) RecordRefresh(RefreshStats) error     { return nil }

// NewDetectionStats counts conflicts per severity and type.
func NewDetectionStats(conflicts []model.Conflict, d time.Duration, at time.Time) DetectionStats {
	ev := DetectionStats{
		Total:      len(conflicts),
		BySeverity: make(map[model.Severity]int, len(model.Severities)),
		ByType:     make(map[model.ConflictType]int),
		Duration:   d,
		Time:       at,
	}
	for _, s := range model.Severities {
		ev.BySeverity[s] = 0
	}
	for _, c := range conflicts {
		ev.BySeverity[c.Severity]++
		ev.ByType[c.Type]++
	}
	return ev
}
