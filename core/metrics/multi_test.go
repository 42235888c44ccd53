package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/skyops/core/model"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordDetection(DetectionStats) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordMutation(MutationStats) error {
	r.count++
	return r.err
}

// detectionOnly does not implement the optional recorders.
type detectionOnly struct{ count int }

func (d *detectionOnly) RecordDetection(DetectionStats) error {
	d.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &detectionOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordDetection(DetectionStats{}); err != nil {
		t.Fatalf("record detection: %v", err)
	}
	if err := m.RecordMutation(MutationStats{}); err != nil {
		t.Fatalf("record mutation: %v", err)
	}
	if err := m.RecordRefresh(RefreshStats{}); err != nil {
		t.Fatalf("record refresh: %v", err)
	}
	if s1.count != 2 || s2.count != 1 {
		t.Fatalf("unexpected forwarding counts: %d %d", s1.count, s2.count)
	}
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	err := NewMultiSink(s1, s2).RecordDetection(DetectionStats{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s2.count != 1 {
		t.Fatalf("second sink skipped after error")
	}
}

func TestNewDetectionStats(t *testing.T) {
	conflicts := []model.Conflict{
		{Type: model.ConflictDoubleBooking, Severity: model.SeverityCritical},
		{Type: model.ConflictLocationMismatch, Severity: model.SeverityWarning},
		{Type: model.ConflictLocationMismatch, Severity: model.SeverityWarning},
	}
	ev := NewDetectionStats(conflicts, time.Millisecond, time.Now())
	if ev.Total != 3 || ev.BySeverity[model.SeverityWarning] != 2 || ev.BySeverity[model.SeverityHigh] != 0 {
		t.Fatalf("unexpected severity counts: %+v", ev.BySeverity)
	}
	if ev.ByType[model.ConflictLocationMismatch] != 2 {
		t.Fatalf("unexpected type counts: %+v", ev.ByType)
	}
}
