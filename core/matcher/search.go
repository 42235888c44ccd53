package matcher

import (
	"strings"

	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/registry"
	"github.com/kilianp07/skyops/core/rules"
)

// PilotQuery filters pilots by attribute. Empty fields match everything.
type PilotQuery struct {
	Skill         string `json:"skill,omitempty"`
	Certification string `json:"certification,omitempty"`
	Location      string `json:"location,omitempty"`
	Status        string `json:"status,omitempty"`
}

// DroneQuery filters drones by attribute. Empty fields match everything.
type DroneQuery struct {
	Capability    string `json:"capability,omitempty"`
	WeatherRating string `json:"weather_rating,omitempty"`
	Location      string `json:"location,omitempty"`
	Status        string `json:"status,omitempty"`
}

// FilterPilots returns the pilots matching every set field of q, compared
// case-insensitively, in registry order.
func FilterPilots(reg *registry.Registry, q PilotQuery) []model.Pilot {
	out := []model.Pilot{}
	for _, p := range reg.Pilots() {
		if q.Skill != "" && !rules.ContainsFold(p.Skills, q.Skill) {
			continue
		}
		if q.Certification != "" && !rules.ContainsFold(p.Certifications, q.Certification) {
			continue
		}
		if !fold(p.Location, q.Location) || !fold(string(p.Status), q.Status) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterDrones returns the drones matching every set field of q.
func FilterDrones(reg *registry.Registry, q DroneQuery) []model.Drone {
	rating := ""
	if q.WeatherRating != "" {
		rating = string(model.NormalizeWeatherRating(q.WeatherRating))
	}
	out := []model.Drone{}
	for _, d := range reg.Drones() {
		if q.Capability != "" && !rules.ContainsFold(d.Capabilities, q.Capability) {
			continue
		}
		if !fold(string(d.WeatherRating), rating) {
			continue
		}
		if !fold(d.Location, q.Location) || !fold(string(d.Status), q.Status) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// PilotsAvailableOn returns Available pilots and On Leave pilots whose leave
// window does not include day.
func PilotsAvailableOn(reg *registry.Registry, day model.Date) []model.Pilot {
	out := []model.Pilot{}
	for _, p := range reg.Pilots() {
		switch p.Status {
		case model.PilotAvailable:
			out = append(out, p)
		case model.PilotOnLeave:
			if p.HasLeaveWindow() && !p.OnLeaveDuring(day, day) {
				out = append(out, p)
			}
		}
	}
	return out
}

func fold(have, want string) bool {
	return want == "" || strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want))
}
