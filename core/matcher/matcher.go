// Package matcher ranks pilots and drones against a mission's requirements.
package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/registry"
	"github.com/kilianp07/skyops/core/rules"
)

// PilotMatch is a candidate pilot and the soft requirements it does not meet.
type PilotMatch struct {
	Pilot   model.Pilot `json:"pilot"`
	Missing []string    `json:"missing"`
}

// DroneMatch is a candidate drone and the soft requirements it does not meet.
type DroneMatch struct {
	Drone   model.Drone `json:"drone"`
	Missing []string    `json:"missing"`
}

// Matcher holds the weather table used to exclude drones.
type Matcher struct {
	weather rules.WeatherTable
}

// New returns a matcher. A nil table selects the default one.
func New(weather rules.WeatherTable) *Matcher {
	if weather == nil {
		weather = rules.DefaultWeatherTable()
	}
	return &Matcher{weather: weather}
}

// FindAvailablePilots returns pilots that are Available or On Mission and
// hold every required skill and certification. With locationFilter a pilot
// elsewhere is kept but carries a location item. Results are ordered by the
// number of missing items, keeping registry order on ties.
func (mt *Matcher) FindAvailablePilots(reg *registry.Registry, m model.Mission, locationFilter bool) []PilotMatch {
	out := []PilotMatch{}
	for _, p := range reg.Pilots() {
		if p.Status != model.PilotAvailable && p.Status != model.PilotOnMission {
			continue
		}
		var missing []string
		if locationFilter && !rules.SameLocation(p.Location, m.Location) {
			missing = append(missing, fmt.Sprintf("location (%s vs %s)", p.Location, m.Location))
		}
		certs := rules.MissingItems(m.RequiredCertifications, p.Certifications)
		if len(certs) > 0 {
			missing = append(missing, "certifications: "+strings.Join(certs, ", "))
		}
		skills := rules.MissingItems(m.RequiredSkills, p.Skills)
		if len(skills) > 0 {
			missing = append(missing, "skills: "+strings.Join(skills, ", "))
		}
		if len(certs) > 0 || len(skills) > 0 {
			continue
		}
		out = append(out, PilotMatch{Pilot: p, Missing: missing})
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Missing) < len(out[j].Missing) })
	return out
}

// FindCompatibleDrones returns drones that are Available or Deployed and
// rated for the expected weather. Maintenance, location and capability gaps
// are reported but do not exclude.
func (mt *Matcher) FindCompatibleDrones(reg *registry.Registry, m model.Mission, locationFilter bool) []DroneMatch {
	out := []DroneMatch{}
	for _, d := range reg.Drones() {
		if d.Status != model.DroneAvailable && d.Status != model.DroneDeployed {
			continue
		}
		if !mt.weather.Compatible(d.WeatherRating, m.ExpectedWeather) {
			continue
		}
		var missing []string
		if d.MaintenanceDueBy(m.Start) {
			missing = append(missing, "maintenance due")
		}
		if locationFilter && !rules.SameLocation(d.Location, m.Location) {
			missing = append(missing, fmt.Sprintf("location (%s vs %s)", d.Location, m.Location))
		}
		if caps := rules.MissingItems(m.DroneRequirements, d.Capabilities); len(caps) > 0 {
			missing = append(missing, "capabilities: "+strings.Join(caps, ", "))
		}
		out = append(out, DroneMatch{Drone: d, Missing: missing})
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Missing) < len(out[j].Missing) })
	return out
}

// FullyQualifiedPilots keeps the matches without missing items.
func FullyQualifiedPilots(matches []PilotMatch) []PilotMatch {
	out := []PilotMatch{}
	for _, m := range matches {
		if len(m.Missing) == 0 {
			out = append(out, m)
		}
	}
	return out
}

// FullyQualifiedDrones keeps the matches without missing items.
func FullyQualifiedDrones(matches []DroneMatch) []DroneMatch {
	out := []DroneMatch{}
	for _, m := range matches {
		if len(m.Missing) == 0 {
			out = append(out, m)
		}
	}
	return out
}
