package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/skyops/core/audit"
	"github.com/kilianp07/skyops/core/conflict"
	"github.com/kilianp07/skyops/core/events"
	"github.com/kilianp07/skyops/core/metrics"
	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/monitoring"
	"github.com/kilianp07/skyops/core/registry"
	"github.com/kilianp07/skyops/core/request"
)

// MutationResult reports the provider steps committed by a mutation and the
// detection pass run on the resulting snapshot.
type MutationResult struct {
	Operation string          `json:"operation"`
	Entity    string          `json:"entity"`
	MissionID string          `json:"mission_id,omitempty"`
	Status    string          `json:"status,omitempty"`
	Committed []string        `json:"committed"`
	Detection conflict.Result `json:"detection"`
}

// step is one provider call and the snapshot change it commits.
type step struct {
	name   string
	call   func(ctx context.Context) error
	commit func(reg *registry.Registry) (*registry.Registry, error)
}

// AssignPilot records the assignment, then sets the pilot On Mission.
func (e *Engine) AssignPilot(ctx context.Context, name, missionID string) (MutationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	reg := e.Snapshot()
	res := MutationResult{Operation: string(request.KindAssignPilot), Entity: name, MissionID: missionID, Status: string(model.PilotOnMission)}
	if _, ok := reg.Pilot(name); !ok {
		return res, e.rejected(res, model.NotFoundError("pilot", name))
	}
	if _, ok := reg.Mission(missionID); !ok {
		return res, e.rejected(res, model.NotFoundError("mission", missionID))
	}
	return e.apply(ctx, res,
		step{
			name:   "assignment",
			call:   func(ctx context.Context) error { return e.provider.UpdatePilotAssignment(ctx, name, missionID) },
			commit: func(r *registry.Registry) (*registry.Registry, error) { return r.WithPilotAssignment(name, missionID) },
		},
		step{
			name: "status",
			call: func(ctx context.Context) error {
				return e.provider.UpdatePilotStatus(ctx, name, string(model.PilotOnMission))
			},
			commit: func(r *registry.Registry) (*registry.Registry, error) {
				return r.WithPilotStatus(name, model.PilotOnMission)
			},
		},
	)
}

// AssignDrone checks weather compatibility, records the assignment, then
// sets the drone Deployed.
func (e *Engine) AssignDrone(ctx context.Context, id, missionID string) (MutationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	reg := e.Snapshot()
	res := MutationResult{Operation: string(request.KindAssignDrone), Entity: id, MissionID: missionID, Status: string(model.DroneDeployed)}
	d, ok := reg.Drone(id)
	if !ok {
		return res, e.rejected(res, model.NotFoundError("drone", id))
	}
	m, ok := reg.Mission(missionID)
	if !ok {
		return res, e.rejected(res, model.NotFoundError("mission", missionID))
	}
	if !e.detector.Weather().Compatible(d.WeatherRating, m.ExpectedWeather) {
		err := fmt.Errorf("%w: drone %s is %s, mission %s expects %s (allowed %v)",
			ErrWeatherIncompatible, d.ID, d.WeatherRating, m.ID, m.ExpectedWeather, e.detector.Weather().Allowed(m.ExpectedWeather))
		return res, e.rejected(res, err)
	}
	return e.apply(ctx, res,
		step{
			name:   "assignment",
			call:   func(ctx context.Context) error { return e.provider.UpdateDroneAssignment(ctx, id, missionID) },
			commit: func(r *registry.Registry) (*registry.Registry, error) { return r.WithDroneAssignment(id, missionID) },
		},
		step{
			name: "status",
			call: func(ctx context.Context) error {
				return e.provider.UpdateDroneStatus(ctx, id, string(model.DroneDeployed))
			},
			commit: func(r *registry.Registry) (*registry.Registry, error) {
				return r.WithDroneStatus(id, model.DroneDeployed)
			},
		},
	)
}

// UpdatePilotStatus sets a pilot's status.
func (e *Engine) UpdatePilotStatus(ctx context.Context, name string, status model.PilotStatus) (MutationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := MutationResult{Operation: string(request.KindUpdateStatus), Entity: name, Status: string(status)}
	if _, ok := e.Snapshot().Pilot(name); !ok {
		return res, e.rejected(res, model.NotFoundError("pilot", name))
	}
	return e.apply(ctx, res, step{
		name:   "status",
		call:   func(ctx context.Context) error { return e.provider.UpdatePilotStatus(ctx, name, string(status)) },
		commit: func(r *registry.Registry) (*registry.Registry, error) { return r.WithPilotStatus(name, status) },
	})
}

// UpdateDroneStatus sets a drone's status.
func (e *Engine) UpdateDroneStatus(ctx context.Context, id string, status model.DroneStatus) (MutationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := MutationResult{Operation: string(request.KindUpdateStatus), Entity: id, Status: string(status)}
	if _, ok := e.Snapshot().Drone(id); !ok {
		return res, e.rejected(res, model.NotFoundError("drone", id))
	}
	return e.apply(ctx, res, step{
		name:   "status",
		call:   func(ctx context.Context) error { return e.provider.UpdateDroneStatus(ctx, id, string(status)) },
		commit: func(r *registry.Registry) (*registry.Registry, error) { return r.WithDroneStatus(id, status) },
	})
}

// apply runs steps in order. Each step calls the provider first and only
// publishes its snapshot change once the provider reports success, so a
// failure leaves the snapshot holding exactly the committed steps. A
// detection pass runs on the final snapshot. Callers hold e.mu.
func (e *Engine) apply(ctx context.Context, res MutationResult, steps ...step) (MutationResult, error) {
	start := e.now()
	res.Committed = []string{}
	var failure error
	for _, s := range steps {
		pctx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
		err := s.call(pctx)
		cancel()
		if err != nil {
			failure = fmt.Errorf("%w: %s %s %s: %w", ErrProvider, res.Operation, res.Entity, s.name, err)
			monitoring.CaptureException(failure, map[string]string{
				"operation": res.Operation, "entity": res.Entity, "step": s.name,
			})
			break
		}
		next, err := s.commit(e.Snapshot())
		if err != nil {
			failure = err
			break
		}
		e.snap.Store(next)
		res.Committed = append(res.Committed, s.name)
	}
	res.Detection = e.detect(e.Snapshot())
	e.recordMutation(res, failure, e.now().Sub(start), start)
	if failure != nil {
		if len(res.Committed) > 0 {
			e.log.Warnf("%s %s: partially committed %v: %v", res.Operation, res.Entity, res.Committed, failure)
		} else {
			e.log.Errorf("%s %s failed: %v", res.Operation, res.Entity, failure)
		}
		return res, failure
	}
	e.log.Infof("%s %s committed", res.Operation, res.Entity)
	return res, nil
}

// rejected records a mutation refused before reaching the provider.
func (e *Engine) rejected(res MutationResult, err error) error {
	e.recordMutation(res, err, 0, e.now())
	e.log.Warnf("%s %s rejected: %v", res.Operation, res.Entity, err)
	return err
}

func (e *Engine) recordMutation(res MutationResult, err error, d time.Duration, at time.Time) {
	e.publish(events.MutationEvent{
		Operation: res.Operation, Entity: res.Entity, MissionID: res.MissionID,
		Status: res.Status, Err: err, Duration: d, At: at,
	})
	if mr, ok := e.sink.(metrics.MutationRecorder); ok {
		if merr := mr.RecordMutation(metrics.MutationStats{
			Operation: res.Operation, Success: err == nil, Duration: d, Time: at,
		}); merr != nil {
			e.log.Errorf("mutation metrics error: %v", merr)
		}
	}
	rec := audit.Record{
		Timestamp: at,
		Kind:      audit.KindMutation,
		Operation: res.Operation,
		Entity:    res.Entity,
		Status:    res.Status,
		Success:   err == nil,
	}
	if res.MissionID != "" {
		rec.MissionIDs = []string{res.MissionID}
	}
	if err != nil {
		rec.Error = err.Error()
	}
	e.appendAudit(rec)
}
