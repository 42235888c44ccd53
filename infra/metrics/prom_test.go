package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/skyops/core/events"
	coremetrics "github.com/kilianp07/skyops/core/metrics"
	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/internal/eventbus"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	ev := coremetrics.NewDetectionStats([]model.Conflict{
		{Type: model.ConflictDoubleBooking, Severity: model.SeverityCritical},
	}, time.Millisecond, time.Now())
	if err := sink.RecordDetection(ev); err != nil {
		t.Fatalf("record detection: %v", err)
	}
	if v := testutil.ToFloat64(sink.conflicts.WithLabelValues("Critical", "all")); v != 1 {
		t.Fatalf("expected 1 critical conflict, got %v", v)
	}
	if v := testutil.ToFloat64(sink.conflicts.WithLabelValues("all", "Double Booking")); v != 1 {
		t.Fatalf("expected 1 double booking, got %v", v)
	}

	_ = sink.RecordMutation(coremetrics.MutationStats{Operation: "assign_drone", Success: false})
	if v := testutil.ToFloat64(sink.mutations.WithLabelValues("assign_drone", "false")); v != 1 {
		t.Fatalf("expected 1 failed mutation, got %v", v)
	}

	_ = sink.RecordRefresh(coremetrics.RefreshStats{Pilots: 4, Drones: 2, Missions: 3, Success: true})
	if v := testutil.ToFloat64(sink.entities.WithLabelValues("pilot")); v != 4 {
		t.Fatalf("expected 4 pilots, got %v", v)
	}
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = first.RecordMutation(coremetrics.MutationStats{Operation: "update_status", Success: true})
	if v := testutil.ToFloat64(second.mutations.WithLabelValues("update_status", "true")); v != 1 {
		t.Fatalf("collectors not shared, got %v", v)
	}
}

func TestEventCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	bus := eventbus.NewTyped[events.Event]()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink, nil)

	// wait for the subscription before publishing
	deadline := time.Now().Add(time.Second)
	for bus.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	bus.Publish(events.RefreshEvent{Pilots: 2, Drones: 1, Missions: 1, At: time.Now()})
	bus.Publish(events.MutationEvent{Operation: "assign_pilot", At: time.Now()})

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(sink.mutations.WithLabelValues("assign_pilot", "true")) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if v := testutil.ToFloat64(sink.entities.WithLabelValues("pilot")); v != 2 {
		t.Fatalf("expected 2 pilots, got %v", v)
	}
	if v := testutil.ToFloat64(sink.mutations.WithLabelValues("assign_pilot", "true")); v != 1 {
		t.Fatalf("expected mutation recorded, got %v", v)
	}
}
