// Package cost projects pilot spend for missions.
package cost

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/registry"
)

// HoursPerDay is the billable workday used for every projection.
const HoursPerDay = 8

// PilotCost is the projected spend for one pilot on one mission.
type PilotCost struct {
	Pilot        string  `json:"pilot_name"`
	HourlyRate   float64 `json:"hourly_rate"`
	Hours        float64 `json:"estimated_hours"`
	Cost         float64 `json:"estimated_cost"`
	Budget       float64 `json:"mission_budget"`
	WithinBudget bool    `json:"within_budget"`
}

// Breakdown is the projected spend of a mission.
type Breakdown struct {
	MissionID    string      `json:"mission_id"`
	DurationDays int         `json:"duration_days"`
	Pilots       []PilotCost `json:"pilot_costs"`
	PilotsTotal  float64     `json:"total_pilots_cost"`
	// DronesTotal is always zero: drone usage is not billed yet.
	DronesTotal  float64  `json:"total_drones_cost"`
	Total        float64  `json:"total_estimated_cost"`
	Budget       float64  `json:"mission_budget"`
	WithinBudget bool     `json:"within_budget"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Overrun returns how much the total exceeds the budget, or zero.
func (b Breakdown) Overrun() float64 {
	if b.Total > b.Budget {
		return b.Total - b.Budget
	}
	return 0
}

// Estimate computes the breakdown of a registered mission.
func Estimate(reg *registry.Registry, missionID string) (Breakdown, error) {
	m, ok := reg.Mission(missionID)
	if !ok {
		return Breakdown{}, fmt.Errorf("estimate cost: %w", model.NotFoundError("mission", missionID))
	}
	return ForMission(reg, m), nil
}

// ForMission computes the breakdown of m using pilots from reg. Pilots that
// are not registered are skipped with a warning.
func ForMission(reg *registry.Registry, m model.Mission) Breakdown {
	b := Breakdown{
		MissionID:    m.ID,
		DurationDays: m.DurationDays(),
		Budget:       m.Budget,
	}
	costs := make([]float64, 0, len(m.AssignedPilots))
	for _, name := range m.AssignedPilots {
		p, ok := reg.Pilot(name)
		if !ok {
			b.Warnings = append(b.Warnings, fmt.Sprintf("pilot %q is not registered and was excluded", name))
			continue
		}
		line := lineFor(p, b.DurationDays, m.Budget)
		b.Pilots = append(b.Pilots, line)
		costs = append(costs, line.Cost)
	}
	b.PilotsTotal = floats.Sum(costs)
	b.Total = b.PilotsTotal + b.DronesTotal
	b.WithinBudget = b.Total <= b.Budget
	return b
}

// Projection is the effect of adding one pilot to a mission.
type Projection struct {
	MissionID       string    `json:"mission_id"`
	Line            PilotCost `json:"pilot_cost"`
	AlreadyAssigned bool      `json:"already_assigned"`
	CurrentTotal    float64   `json:"current_total"`
	ProjectedTotal  float64   `json:"projected_total"`
	Budget          float64   `json:"mission_budget"`
	Remaining       float64   `json:"remaining"`
	Overrun         float64   `json:"overrun"`
	WithinBudget    bool      `json:"within_budget"`
}

// Hypothetical projects the cost of the mission had the pilot been
// assigned. A pilot already on the mission is not counted twice.
func Hypothetical(reg *registry.Registry, missionID, pilotName string) (Projection, error) {
	m, ok := reg.Mission(missionID)
	if !ok {
		return Projection{}, fmt.Errorf("hypothetical cost: %w", model.NotFoundError("mission", missionID))
	}
	p, ok := reg.Pilot(pilotName)
	if !ok {
		return Projection{}, fmt.Errorf("hypothetical cost: %w", model.NotFoundError("pilot", pilotName))
	}
	current := ForMission(reg, m)
	pr := Projection{
		MissionID:    missionID,
		Line:         lineFor(p, current.DurationDays, m.Budget),
		CurrentTotal: current.Total,
		Budget:       m.Budget,
	}
	for _, name := range m.AssignedPilots {
		if name == pilotName {
			pr.AlreadyAssigned = true
			break
		}
	}
	pr.ProjectedTotal = current.Total
	if !pr.AlreadyAssigned {
		pr.ProjectedTotal = floats.Sum([]float64{current.Total, pr.Line.Cost})
	}
	pr.WithinBudget = pr.ProjectedTotal <= pr.Budget
	if pr.WithinBudget {
		pr.Remaining = pr.Budget - pr.ProjectedTotal
	} else {
		pr.Overrun = pr.ProjectedTotal - pr.Budget
	}
	return pr, nil
}

func lineFor(p model.Pilot, days int, budget float64) PilotCost {
	hours := float64(days * HoursPerDay)
	c := p.HourlyRate * hours
	return PilotCost{
		Pilot:        p.Name,
		HourlyRate:   p.HourlyRate,
		Hours:        hours,
		Cost:         c,
		Budget:       budget,
		WithinBudget: c <= budget,
	}
}
