// Package registry holds an immutable snapshot of pilots, drones and missions
// keyed by their identity.
//
// Assignments live in one place: the mission assignment lists. The "current
// assignment" of a pilot or drone is derived from those lists and the order
// in which the edges were created, so there is no back-reference to keep in
// sync. Mutating helpers return a new Registry and leave the receiver intact.
package registry

import "github.com/kilianp07/skyops/core/model"

// BackRef is a resource-side assignment hint coming from the source data,
// e.g. a pilot row whose "current assignment" column names a mission.
type BackRef struct {
	Kind      Kind
	Key       string
	MissionID string
}

// Registry is a read-only snapshot. All accessors are safe for concurrent use.
type Registry struct {
	pilots       map[string]model.Pilot
	pilotOrder   []string
	drones       map[string]model.Drone
	droneOrder   []string
	missions     map[string]model.Mission
	missionOrder []string

	// edges map a resource to the missions it is assigned to, oldest first.
	pilotEdges map[string][]string
	droneEdges map[string][]string

	dangling []BackRef
}

// Empty returns a registry without entities.
func Empty() *Registry {
	r, _ := Build(nil, nil, nil)
	return r
}

// Build indexes the collections. Duplicate keys keep the position of their
// first occurrence and the value of their last one, and are reported through
// a *LoadError. The returned registry is always usable.
func Build(pilots []model.Pilot, drones []model.Drone, missions []model.Mission, refs ...BackRef) (*Registry, error) {
	r := &Registry{
		pilots:     make(map[string]model.Pilot, len(pilots)),
		drones:     make(map[string]model.Drone, len(drones)),
		missions:   make(map[string]model.Mission, len(missions)),
		pilotEdges: make(map[string][]string),
		droneEdges: make(map[string][]string),
	}
	var dups []DuplicateKey
	for _, p := range pilots {
		if _, ok := r.pilots[p.Name]; ok {
			dups = append(dups, DuplicateKey{Kind: KindPilot, Key: p.Name})
		} else {
			r.pilotOrder = append(r.pilotOrder, p.Name)
		}
		r.pilots[p.Name] = p
	}
	for _, d := range drones {
		if _, ok := r.drones[d.ID]; ok {
			dups = append(dups, DuplicateKey{Kind: KindDrone, Key: d.ID})
		} else {
			r.droneOrder = append(r.droneOrder, d.ID)
		}
		r.drones[d.ID] = d
	}
	for _, m := range missions {
		if _, ok := r.missions[m.ID]; ok {
			dups = append(dups, DuplicateKey{Kind: KindMission, Key: m.ID})
		} else {
			r.missionOrder = append(r.missionOrder, m.ID)
		}
		m = m.Clone()
		m.AssignedPilots = dedupe(m.AssignedPilots)
		m.AssignedDrones = dedupe(m.AssignedDrones)
		r.missions[m.ID] = m
	}
	for _, id := range r.missionOrder {
		m := r.missions[id]
		for _, name := range m.AssignedPilots {
			r.pilotEdges[name] = append(r.pilotEdges[name], id)
		}
		for _, did := range m.AssignedDrones {
			r.droneEdges[did] = append(r.droneEdges[did], id)
		}
	}
	for _, ref := range refs {
		if ref.MissionID == "" {
			continue
		}
		if _, ok := r.missions[ref.MissionID]; !ok {
			r.dangling = append(r.dangling, ref)
			continue
		}
		switch ref.Kind {
		case KindPilot:
			r.assignPilot(ref.Key, ref.MissionID)
		case KindDrone:
			r.assignDrone(ref.Key, ref.MissionID)
		}
	}
	if len(dups) > 0 {
		return r, &LoadError{Duplicates: dups}
	}
	return r, nil
}

// Pilot returns the pilot with the given name.
func (r *Registry) Pilot(name string) (model.Pilot, bool) {
	p, ok := r.pilots[name]
	return p, ok
}

// Drone returns the drone with the given ID.
func (r *Registry) Drone(id string) (model.Drone, bool) {
	d, ok := r.drones[id]
	return d, ok
}

// Mission returns a copy of the mission with the given ID.
func (r *Registry) Mission(id string) (model.Mission, bool) {
	m, ok := r.missions[id]
	if !ok {
		return model.Mission{}, false
	}
	return m.Clone(), true
}

// Pilots returns every pilot in input order.
func (r *Registry) Pilots() []model.Pilot {
	out := make([]model.Pilot, 0, len(r.pilotOrder))
	for _, name := range r.pilotOrder {
		out = append(out, r.pilots[name])
	}
	return out
}

// Drones returns every drone in input order.
func (r *Registry) Drones() []model.Drone {
	out := make([]model.Drone, 0, len(r.droneOrder))
	for _, id := range r.droneOrder {
		out = append(out, r.drones[id])
	}
	return out
}

// Missions returns a copy of every mission in input order.
func (r *Registry) Missions() []model.Mission {
	out := make([]model.Mission, 0, len(r.missionOrder))
	for _, id := range r.missionOrder {
		out = append(out, r.missions[id].Clone())
	}
	return out
}

// Counts returns the number of pilots, drones and missions.
func (r *Registry) Counts() (pilots, drones, missions int) {
	return len(r.pilots), len(r.drones), len(r.missions)
}

// PilotAssignment is the derived current assignment of a pilot: the mission
// it was most recently assigned to.
func (r *Registry) PilotAssignment(name string) (string, bool) {
	return last(r.pilotEdges[name])
}

// DroneAssignment is the derived current assignment of a drone.
func (r *Registry) DroneAssignment(id string) (string, bool) {
	return last(r.droneEdges[id])
}

// PilotMissions lists every mission the pilot is assigned to, oldest first.
func (r *Registry) PilotMissions(name string) []string {
	return append([]string(nil), r.pilotEdges[name]...)
}

// DroneMissions lists every mission the drone is assigned to, oldest first.
func (r *Registry) DroneMissions(id string) []string {
	return append([]string(nil), r.droneEdges[id]...)
}

// DanglingRefs returns back-references that named unknown missions.
func (r *Registry) DanglingRefs() []BackRef {
	return append([]BackRef(nil), r.dangling...)
}

func last(s []string) (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	return s[len(s)-1], true
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
