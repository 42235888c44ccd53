package registry

import (
	"fmt"

	"github.com/kilianp07/skyops/core/model"
)

// WithPilotStatus returns a copy of r where the pilot has the given status.
func (r *Registry) WithPilotStatus(name string, status model.PilotStatus) (*Registry, error) {
	p, ok := r.pilots[name]
	if !ok {
		return nil, model.NotFoundError("pilot", name)
	}
	next := r.clone()
	p.Status = status
	next.pilots[name] = p
	return next, nil
}

// WithDroneStatus returns a copy of r where the drone has the given status.
func (r *Registry) WithDroneStatus(id string, status model.DroneStatus) (*Registry, error) {
	d, ok := r.drones[id]
	if !ok {
		return nil, model.NotFoundError("drone", id)
	}
	next := r.clone()
	d.Status = status
	next.drones[id] = d
	return next, nil
}

// WithPilotAssignment returns a copy of r where the pilot is assigned to the
// mission. An empty missionID removes the pilot from every mission.
func (r *Registry) WithPilotAssignment(name, missionID string) (*Registry, error) {
	if _, ok := r.pilots[name]; !ok {
		return nil, model.NotFoundError("pilot", name)
	}
	if missionID != "" {
		if _, ok := r.missions[missionID]; !ok {
			return nil, model.NotFoundError("mission", missionID)
		}
	}
	next := r.clone()
	if missionID == "" {
		next.clearPilot(name)
		return next, nil
	}
	next.assignPilot(name, missionID)
	return next, nil
}

// WithDroneAssignment returns a copy of r where the drone is assigned to the
// mission. An empty missionID removes the drone from every mission.
func (r *Registry) WithDroneAssignment(id, missionID string) (*Registry, error) {
	if _, ok := r.drones[id]; !ok {
		return nil, model.NotFoundError("drone", id)
	}
	if missionID != "" {
		if _, ok := r.missions[missionID]; !ok {
			return nil, model.NotFoundError("mission", missionID)
		}
	}
	next := r.clone()
	if missionID == "" {
		next.clearDrone(id)
		return next, nil
	}
	next.assignDrone(id, missionID)
	return next, nil
}

// assignPilot records the edge and moves it to the most recent position.
// It must only run on a registry that is not yet shared.
func (r *Registry) assignPilot(name, missionID string) {
	m := r.missions[missionID]
	if !contains(m.AssignedPilots, name) {
		m = m.Clone()
		m.AssignedPilots = append(m.AssignedPilots, name)
		r.missions[missionID] = m
	}
	r.pilotEdges[name] = append(remove(r.pilotEdges[name], missionID), missionID)
}

func (r *Registry) assignDrone(id, missionID string) {
	m := r.missions[missionID]
	if !contains(m.AssignedDrones, id) {
		m = m.Clone()
		m.AssignedDrones = append(m.AssignedDrones, id)
		r.missions[missionID] = m
	}
	r.droneEdges[id] = append(remove(r.droneEdges[id], missionID), missionID)
}

func (r *Registry) clearPilot(name string) {
	for _, mid := range r.pilotEdges[name] {
		m := r.missions[mid].Clone()
		m.AssignedPilots = remove(m.AssignedPilots, name)
		r.missions[mid] = m
	}
	delete(r.pilotEdges, name)
}

func (r *Registry) clearDrone(id string) {
	for _, mid := range r.droneEdges[id] {
		m := r.missions[mid].Clone()
		m.AssignedDrones = remove(m.AssignedDrones, id)
		r.missions[mid] = m
	}
	delete(r.droneEdges, id)
}

// clone copies the maps so the result can be edited without touching r.
// Entity values and order slices are shared; edits replace whole values.
func (r *Registry) clone() *Registry {
	next := &Registry{
		pilots:       make(map[string]model.Pilot, len(r.pilots)),
		pilotOrder:   r.pilotOrder,
		drones:       make(map[string]model.Drone, len(r.drones)),
		droneOrder:   r.droneOrder,
		missions:     make(map[string]model.Mission, len(r.missions)),
		missionOrder: r.missionOrder,
		pilotEdges:   make(map[string][]string, len(r.pilotEdges)),
		droneEdges:   make(map[string][]string, len(r.droneEdges)),
		dangling:     r.dangling,
	}
	for k, v := range r.pilots {
		next.pilots[k] = v
	}
	for k, v := range r.drones {
		next.drones[k] = v
	}
	for k, v := range r.missions {
		next.missions[k] = v
	}
	for k, v := range r.pilotEdges {
		next.pilotEdges[k] = append([]string(nil), v...)
	}
	for k, v := range r.droneEdges {
		next.droneEdges[k] = append([]string(nil), v...)
	}
	return next
}

func (r *Registry) String() string {
	return fmt.Sprintf("registry(pilots=%d drones=%d missions=%d)", len(r.pilots), len(r.drones), len(r.missions))
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func remove(s []string, v string) []string {
	out := make([]string, 0, len(s))
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
