// Package availability summarizes which missions each pilot can staff and
// the overall state of the fleet.
package availability

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/skyops/core/conflict"
	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/registry"
	"github.com/kilianp07/skyops/core/rules"
)

// PilotAvailability lists the missions a pilot is qualified for.
type PilotAvailability struct {
	Status       model.PilotStatus `json:"status"`
	Location     string            `json:"location"`
	HourlyRate   float64           `json:"hourly_rate"`
	Skills       []string          `json:"skills"`
	AvailableFor []string          `json:"available_for"`
}

// Summarize maps every pilot to the missions, in registry order, whose
// skills and certifications it fully covers. Status is reported, not used
// as a filter.
func Summarize(reg *registry.Registry) map[string]PilotAvailability {
	missions := reg.Missions()
	out := make(map[string]PilotAvailability)
	for _, p := range reg.Pilots() {
		pa := PilotAvailability{
			Status:       p.Status,
			Location:     p.Location,
			HourlyRate:   p.HourlyRate,
			Skills:       append([]string(nil), p.Skills...),
			AvailableFor: []string{},
		}
		for _, m := range missions {
			if rules.PilotQualified(p, m) {
				pa.AvailableFor = append(pa.AvailableFor, m.ID)
			}
		}
		out[p.Name] = pa
	}
	return out
}

// OperationsSummary is a fleet-wide snapshot of counts and averages.
type OperationsSummary struct {
	Pilots            int                         `json:"pilots"`
	Drones            int                         `json:"drones"`
	Missions          int                         `json:"missions"`
	PilotsByStatus    map[model.PilotStatus]int   `json:"pilots_by_status"`
	DronesByStatus    map[model.DroneStatus]int   `json:"drones_by_status"`
	MissionsByStatus  map[model.MissionStatus]int `json:"missions_by_status"`
	MeanHourlyRate    float64                     `json:"mean_hourly_rate"`
	MeanBatteryHealth float64                     `json:"mean_battery_health"`
	Conflicts         int                         `json:"conflicts"`
	HasCritical       bool                        `json:"has_critical_issues"`
	ConflictSummary   string                      `json:"conflict_summary"`
}

// Operations counts entities per status and folds in a detection result.
// Every known status appears in the maps, with zero when unused.
func Operations(reg *registry.Registry, detection conflict.Result) OperationsSummary {
	s := OperationsSummary{
		PilotsByStatus:   make(map[model.PilotStatus]int, len(model.PilotStatuses)),
		DronesByStatus:   make(map[model.DroneStatus]int, len(model.DroneStatuses)),
		MissionsByStatus: make(map[model.MissionStatus]int, len(model.MissionStatuses)),
		Conflicts:        len(detection.Conflicts),
		HasCritical:      detection.HasCritical,
		ConflictSummary:  detection.Summary,
	}
	for _, st := range model.PilotStatuses {
		s.PilotsByStatus[st] = 0
	}
	for _, st := range model.DroneStatuses {
		s.DronesByStatus[st] = 0
	}
	for _, st := range model.MissionStatuses {
		s.MissionsByStatus[st] = 0
	}

	pilots := reg.Pilots()
	rates := make([]float64, 0, len(pilots))
	for _, p := range pilots {
		s.PilotsByStatus[p.Status]++
		rates = append(rates, p.HourlyRate)
	}
	drones := reg.Drones()
	battery := make([]float64, 0, len(drones))
	for _, d := range drones {
		s.DronesByStatus[d.Status]++
		battery = append(battery, float64(d.BatteryHealth))
	}
	for _, m := range reg.Missions() {
		s.MissionsByStatus[m.Status]++
	}
	s.Pilots, s.Drones, s.Missions = reg.Counts()
	if len(rates) > 0 {
		s.MeanHourlyRate = stat.Mean(rates, nil)
	}
	if len(battery) > 0 {
		s.MeanBatteryHealth = stat.Mean(battery, nil)
	}
	return s
}
