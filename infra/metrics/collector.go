package metrics

import (
	"context"

	"github.com/kilianp07/skyops/core/events"
	"github.com/kilianp07/skyops/core/logger"
	coremetrics "github.com/kilianp07/skyops/core/metrics"
	"github.com/kilianp07/skyops/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// engine events. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("metrics: record %s: %v", ev.EventName(), err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.DetectionEvent:
		return sink.RecordDetection(coremetrics.DetectionStats{
			Total:      e.Conflicts,
			BySeverity: e.BySeverity,
			ByType:     e.ByType,
			Duration:   e.Duration,
			Time:       e.At,
		})
	case events.MutationEvent:
		if r, ok := sink.(coremetrics.MutationRecorder); ok {
			return r.RecordMutation(coremetrics.MutationStats{
				Operation: e.Operation,
				Success:   e.Err == nil,
				Duration:  e.Duration,
				Time:      e.At,
			})
		}
	case events.RefreshEvent:
		if r, ok := sink.(coremetrics.RefreshRecorder); ok {
			return r.RecordRefresh(coremetrics.RefreshStats{
				Pilots:   e.Pilots,
				Drones:   e.Drones,
				Missions: e.Missions,
				Skipped:  e.Warnings,
				Success:  e.Err == nil,
				Duration: e.Duration,
				Time:     e.At,
			})
		}
	}
	return nil
}
