package model

import (
	"math"
	"strings"
)

// Weather is the expected condition during a mission.
type Weather string

const (
	WeatherClear  Weather = "Clear"
	WeatherCloudy Weather = "Cloudy"
	WeatherRainy  Weather = "Rainy"
	WeatherStormy Weather = "Stormy"
	WeatherFoggy  Weather = "Foggy"
)

// ParseWeather maps a forecast label to a Weather. "Sunny" is treated as
// Clear. Unknown labels are kept verbatim so the compatibility table can
// apply its fallback.
func ParseWeather(s string) Weather {
	switch normalizeStatus(s) {
	case "", "clear", "sunny":
		return WeatherClear
	case "cloudy":
		return WeatherCloudy
	case "rainy", "rain":
		return WeatherRainy
	case "stormy", "storm":
		return WeatherStormy
	case "foggy", "fog":
		return WeatherFoggy
	default:
		return Weather(strings.TrimSpace(s))
	}
}

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	MissionPlanned   MissionStatus = "Planned"
	MissionActive    MissionStatus = "Active"
	MissionCompleted MissionStatus = "Completed"
)

// MissionStatuses lists every mission status in display order.
var MissionStatuses = []MissionStatus{MissionPlanned, MissionActive, MissionCompleted}

// ParseMissionStatus maps free-form input to a status, defaulting to Planned.
func ParseMissionStatus(s string) (MissionStatus, bool) {
	switch normalizeStatus(s) {
	case "", "planned":
		return MissionPlanned, true
	case "active", "in progress":
		return MissionActive, true
	case "completed", "done":
		return MissionCompleted, true
	default:
		return MissionPlanned, false
	}
}

// DefaultPriority applies when the source omits a priority label.
const DefaultPriority = "Medium"

// Mission is a client engagement. ID is its identity. AssignedPilots and
// AssignedDrones are the only ownership edges towards pilots and drones.
type Mission struct {
	ID                     string        `json:"mission_id" yaml:"mission_id"`
	Client                 string        `json:"client" yaml:"client"`
	Project                string        `json:"project" yaml:"project"`
	Location               string        `json:"location" yaml:"location"`
	RequiredSkills         []string      `json:"required_skills" yaml:"required_skills"`
	RequiredCertifications []string      `json:"required_certifications" yaml:"required_certifications"`
	Start                  Date          `json:"start" yaml:"start"`
	End                    Date          `json:"end" yaml:"end"`
	Priority               string        `json:"priority" yaml:"priority"`
	Budget                 float64       `json:"budget" yaml:"budget"`
	DroneRequirements      []string      `json:"drone_requirements,omitempty" yaml:"drone_requirements,omitempty"`
	ExpectedWeather        Weather       `json:"expected_weather" yaml:"expected_weather"`
	AssignedPilots         []string      `json:"assigned_pilots" yaml:"assigned_pilots"`
	AssignedDrones         []string      `json:"assigned_drones" yaml:"assigned_drones"`
	Status                 MissionStatus `json:"status" yaml:"status"`
}

// Validate checks the construction invariants of a mission.
func (m Mission) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return invalid("mission", m.ID, "mission_id", "is required")
	}
	if m.Start.IsZero() || m.End.IsZero() {
		return invalid("mission", m.ID, "dates", "start and end are required")
	}
	if m.End.Before(m.Start) {
		return invalid("mission", m.ID, "end", "is before start")
	}
	if !(m.Budget > 0) || math.IsInf(m.Budget, 0) {
		return invalid("mission", m.ID, "budget", "must be positive")
	}
	return nil
}

// DurationDays counts both endpoints.
func (m Mission) DurationDays() int {
	return m.Start.DaysUntil(m.End) + 1
}

// OverlapsWith reports whether both missions share at least one day.
func (m Mission) OverlapsWith(o Mission) bool {
	return Overlaps(m.Start, m.End, o.Start, o.End)
}

// Clone returns a copy whose slices do not alias m's.
func (m Mission) Clone() Mission {
	c := m
	c.RequiredSkills = append([]string(nil), m.RequiredSkills...)
	c.RequiredCertifications = append([]string(nil), m.RequiredCertifications...)
	c.DroneRequirements = append([]string(nil), m.DroneRequirements...)
	c.AssignedPilots = append([]string(nil), m.AssignedPilots...)
	c.AssignedDrones = append([]string(nil), m.AssignedDrones...)
	return c
}
