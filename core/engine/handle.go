package engine

import (
	"context"
	"fmt"

	"github.com/kilianp07/skyops/core/availability"
	"github.com/kilianp07/skyops/core/conflict"
	"github.com/kilianp07/skyops/core/cost"
	"github.com/kilianp07/skyops/core/matcher"
	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/request"
)

// Response carries the typed result of a request. Only the fields relevant
// to Kind are set.
type Response struct {
	Kind         request.Kind                              `json:"kind"`
	PilotMatches []matcher.PilotMatch                      `json:"pilot_matches,omitempty"`
	DroneMatches []matcher.DroneMatch                      `json:"drone_matches,omitempty"`
	Pilots       []model.Pilot                             `json:"pilots,omitempty"`
	Drones       []model.Drone                             `json:"drones,omitempty"`
	Detection    *conflict.Result                          `json:"detection,omitempty"`
	Cost         *cost.Breakdown                           `json:"cost,omitempty"`
	Projection   *cost.Projection                          `json:"projection,omitempty"`
	Mutation     *MutationResult                           `json:"mutation,omitempty"`
	Availability map[string]availability.PilotAvailability `json:"availability,omitempty"`
	Summary      *availability.OperationsSummary           `json:"summary,omitempty"`
}

// Handle executes req. Read requests work on the snapshot current at call
// time; mutations go through the provider first.
func (e *Engine) Handle(ctx context.Context, req request.Request) (Response, error) {
	resp := Response{Kind: req.Kind()}
	reg := e.Snapshot()
	switch r := req.(type) {
	case request.FindPilots:
		switch {
		case !r.Date.IsZero():
			resp.Pilots = matcher.PilotsAvailableOn(reg, r.Date)
		case r.MissionID != "":
			m, ok := reg.Mission(r.MissionID)
			if !ok {
				return resp, model.NotFoundError("mission", r.MissionID)
			}
			resp.PilotMatches = e.matcher.FindAvailablePilots(reg, m, r.LocationFilter)
		default:
			q := matcher.PilotQuery{Skill: r.Skill, Certification: r.Certification, Location: r.Location}
			if q == (matcher.PilotQuery{}) {
				q.Status = string(model.PilotAvailable)
			}
			resp.Pilots = matcher.FilterPilots(reg, q)
		}
	case request.FindDrones:
		if r.MissionID != "" {
			m, ok := reg.Mission(r.MissionID)
			if !ok {
				return resp, model.NotFoundError("mission", r.MissionID)
			}
			resp.DroneMatches = e.matcher.FindCompatibleDrones(reg, m, r.LocationFilter)
			break
		}
		resp.Drones = matcher.FilterDrones(reg, matcher.DroneQuery{
			Capability: r.Capability, WeatherRating: r.WeatherRating, Location: r.Location,
		})
	case request.CheckConflicts:
		if r.MissionID != "" {
			if _, ok := reg.Mission(r.MissionID); !ok {
				return resp, model.NotFoundError("mission", r.MissionID)
			}
		}
		res := e.detect(reg)
		if r.MissionID != "" {
			res = res.ForMission(r.MissionID)
		}
		resp.Detection = &res
	case request.CalculateCosts:
		if r.PilotName != "" {
			p, err := cost.Hypothetical(reg, r.MissionID, r.PilotName)
			if err != nil {
				return resp, err
			}
			resp.Projection = &p
			break
		}
		b, err := cost.Estimate(reg, r.MissionID)
		if err != nil {
			return resp, err
		}
		resp.Cost = &b
	case request.AssignPilot:
		res, err := e.AssignPilot(ctx, r.PilotName, r.MissionID)
		resp.Mutation = &res
		return resp, err
	case request.AssignDrone:
		res, err := e.AssignDrone(ctx, r.DroneID, r.MissionID)
		resp.Mutation = &res
		return resp, err
	case request.UpdateStatus:
		res, err := e.updateStatus(ctx, r)
		resp.Mutation = &res
		return resp, err
	case request.GetAvailability:
		resp.Availability = availability.Summarize(reg)
	case request.GetSummary:
		s := availability.Operations(reg, e.detect(reg))
		resp.Summary = &s
	case request.Unknown:
		return resp, fmt.Errorf("%w: unrecognized query type %q", ErrUnsupported, r.Raw)
	default:
		return resp, fmt.Errorf("%w: %T", ErrUnsupported, req)
	}
	return resp, nil
}

func (e *Engine) updateStatus(ctx context.Context, r request.UpdateStatus) (MutationResult, error) {
	switch r.Entity {
	case request.EntityPilot:
		s, ok := model.ParsePilotStatus(r.Status)
		if !ok {
			return MutationResult{}, &request.DecodeError{Kind: request.KindUpdateStatus, Field: "status", Reason: fmt.Sprintf("%q is not a pilot status", r.Status)}
		}
		return e.UpdatePilotStatus(ctx, r.Key, s)
	case request.EntityDrone:
		s, ok := model.ParseDroneStatus(r.Status)
		if !ok {
			return MutationResult{}, &request.DecodeError{Kind: request.KindUpdateStatus, Field: "status", Reason: fmt.Sprintf("%q is not a drone status", r.Status)}
		}
		return e.UpdateDroneStatus(ctx, r.Key, s)
	default:
		return MutationResult{}, &request.DecodeError{Kind: request.KindUpdateStatus, Field: "entity_type", Reason: fmt.Sprintf("unknown entity %q", r.Entity)}
	}
}
