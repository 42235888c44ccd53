package model

import (
	"math"
	"strings"
)

// PilotStatus is the availability state of a pilot.
type PilotStatus string

const (
	PilotAvailable   PilotStatus = "Available"
	PilotOnLeave     PilotStatus = "On Leave"
	PilotUnavailable PilotStatus = "Unavailable"
	PilotOnMission   PilotStatus = "On Mission"
)

// PilotStatuses lists every pilot status in display order.
var PilotStatuses = []PilotStatus{PilotAvailable, PilotOnLeave, PilotUnavailable, PilotOnMission}

// ParsePilotStatus maps free-form input to a status. Unknown input yields
// PilotUnavailable and ok=false so an unreadable row never looks available.
func ParsePilotStatus(s string) (PilotStatus, bool) {
	switch normalizeStatus(s) {
	case "available":
		return PilotAvailable, true
	case "on leave", "onleave", "leave":
		return PilotOnLeave, true
	case "unavailable":
		return PilotUnavailable, true
	case "on mission", "onmission", "assigned":
		return PilotOnMission, true
	default:
		return PilotUnavailable, false
	}
}

// Pilot is a drone operator. Name is its identity within a registry.
type Pilot struct {
	Name            string      `json:"name" yaml:"name"`
	Skills          []string    `json:"skills" yaml:"skills"`
	Certifications  []string    `json:"certifications" yaml:"certifications"`
	ExperienceHours int         `json:"experience_hours" yaml:"experience_hours"`
	Location        string      `json:"location" yaml:"location"`
	Status          PilotStatus `json:"status" yaml:"status"`
	AvailableFrom   Date        `json:"available_from,omitempty" yaml:"available_from,omitempty"`
	LeaveStart      Date        `json:"leave_start,omitempty" yaml:"leave_start,omitempty"`
	LeaveEnd        Date        `json:"leave_end,omitempty" yaml:"leave_end,omitempty"`
	HourlyRate      float64     `json:"hourly_rate" yaml:"hourly_rate"`
	Email           string      `json:"email,omitempty" yaml:"email,omitempty"`
	Phone           string      `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// Validate checks the construction invariants of a pilot.
func (p Pilot) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("pilot", p.Name, "name", "is required")
	}
	if p.ExperienceHours < 0 {
		return invalid("pilot", p.Name, "experience_hours", "cannot be negative")
	}
	if !(p.HourlyRate > 0) || math.IsInf(p.HourlyRate, 0) {
		return invalid("pilot", p.Name, "hourly_rate", "must be positive")
	}
	return nil
}

// HasLeaveWindow reports whether both leave bounds are set.
func (p Pilot) HasLeaveWindow() bool {
	return !p.LeaveStart.IsZero() && !p.LeaveEnd.IsZero()
}

// OnLeaveDuring reports whether the pilot's leave window overlaps [start,end].
// A pilot without a complete window is never considered on leave.
func (p Pilot) OnLeaveDuring(start, end Date) bool {
	if !p.HasLeaveWindow() {
		return false
	}
	return Overlaps(start, end, p.LeaveStart, p.LeaveEnd)
}

func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
