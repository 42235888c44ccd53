package conflict

import (
	"fmt"
	"strings"

	"github.com/kilianp07/skyops/core/cost"
	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/rules"
)

// Rule group names.
const (
	GroupPilots        = "pilots"
	GroupDrones        = "drones"
	GroupBudget        = "budget"
	GroupLocation      = "location"
	GroupDoubleBooking = "double_booking"
)

// DefaultRuleGroups returns the built-in groups in evaluation order.
func DefaultRuleGroups() []RuleGroup {
	return []RuleGroup{
		RuleFunc{Label: GroupPilots, Fn: checkPilots},
		RuleFunc{Label: GroupDrones, Fn: checkDrones},
		RuleFunc{Label: GroupBudget, Fn: checkBudget},
		RuleFunc{Label: GroupLocation, Fn: checkLocation},
		RuleFunc{Label: GroupDoubleBooking, Fn: checkDoubleBooking},
	}
}

func checkPilots(p *Pass, m model.Mission) {
	for _, name := range m.AssignedPilots {
		pilot, ok := p.Registry.Pilot(name)
		if !ok {
			p.Report(model.Conflict{
				Type:             model.ConflictPilotUnavailable,
				Severity:         model.SeverityCritical,
				AffectedEntity:   name,
				Description:      fmt.Sprintf("Pilot '%s' not found in roster", name),
				AffectedMissions: []string{m.ID},
			})
			continue
		}
		if pilot.Status == model.PilotOnLeave && pilot.OnLeaveDuring(m.Start, m.End) {
			p.Report(model.Conflict{
				Type:             model.ConflictPilotUnavailable,
				Severity:         model.SeverityCritical,
				AffectedEntity:   name,
				Description:      fmt.Sprintf("Pilot '%s' is on leave during mission dates", name),
				AffectedMissions: []string{m.ID},
				Suggestions:      []string{"Reassign pilot or reschedule mission"},
			})
		}
		if pilot.Status == model.PilotUnavailable {
			p.Report(model.Conflict{
				Type:             model.ConflictPilotUnavailable,
				Severity:         model.SeverityHigh,
				AffectedEntity:   name,
				Description:      fmt.Sprintf("Pilot '%s' marked as unavailable", name),
				AffectedMissions: []string{m.ID},
				Suggestions:      []string{"Update pilot status or find replacement"},
			})
		}
		if missing := rules.MissingItems(m.RequiredSkills, pilot.Skills); len(missing) > 0 {
			list := strings.Join(missing, ", ")
			p.Report(model.Conflict{
				Type:             model.ConflictSkillMismatch,
				Severity:         model.SeverityHigh,
				AffectedEntity:   name,
				Description:      "Pilot missing skills: " + list,
				AffectedMissions: []string{m.ID},
				Suggestions: []string{
					fmt.Sprintf("Train pilot in %s or reassign", list),
					fmt.Sprintf("Find pilot with %s skills", list),
				},
			})
		}
		if missing := rules.MissingItems(m.RequiredCertifications, pilot.Certifications); len(missing) > 0 {
			list := strings.Join(missing, ", ")
			p.Report(model.Conflict{
				Type:             model.ConflictMissingCertification,
				Severity:         model.SeverityCritical,
				AffectedEntity:   name,
				Description:      "Pilot missing certifications: " + list,
				AffectedMissions: []string{m.ID},
				Suggestions: []string{
					fmt.Sprintf("Obtain %s certification", list),
					fmt.Sprintf("Find pilot with %s certification", list),
				},
			})
		}
	}
}

func checkDrones(p *Pass, m model.Mission) {
	for _, id := range m.AssignedDrones {
		d, ok := p.Registry.Drone(id)
		if !ok {
			p.Report(model.Conflict{
				Type:             model.ConflictDroneUnavailable,
				Severity:         model.SeverityCritical,
				AffectedEntity:   id,
				Description:      fmt.Sprintf("Drone '%s' not found in fleet", id),
				AffectedMissions: []string{m.ID},
			})
			continue
		}
		switch d.Status {
		case model.DroneMaintenance:
			p.Report(model.Conflict{
				Type:             model.ConflictDroneMaintenance,
				Severity:         model.SeverityHigh,
				AffectedEntity:   id,
				Description:      fmt.Sprintf("Drone '%s' is in maintenance", id),
				AffectedMissions: []string{m.ID},
				Suggestions:      []string{"Complete maintenance or use different drone"},
			})
		case model.DroneGrounded:
			p.Report(model.Conflict{
				Type:             model.ConflictDroneUnavailable,
				Severity:         model.SeverityCritical,
				AffectedEntity:   id,
				Description:      fmt.Sprintf("Drone '%s' is grounded", id),
				AffectedMissions: []string{m.ID},
				Suggestions:      []string{"Fix issues or use different drone"},
			})
		}
		if d.MaintenanceDueBy(m.Start) {
			p.Report(model.Conflict{
				Type:             model.ConflictDroneMaintenance,
				Severity:         model.SeverityHigh,
				AffectedEntity:   id,
				Description:      fmt.Sprintf("Drone '%s' maintenance due on %s", id, d.MaintenanceDue),
				AffectedMissions: []string{m.ID},
				Suggestions:      []string{"Schedule maintenance after mission or use different drone"},
			})
		}
		if !p.Weather.Compatible(d.WeatherRating, m.ExpectedWeather) {
			p.Report(model.Conflict{
				Type:             model.ConflictWeatherIncompatibility,
				Severity:         model.SeverityCritical,
				AffectedEntity:   id,
				Description:      fmt.Sprintf("Drone '%s' not rated for %s conditions", id, m.ExpectedWeather),
				AffectedMissions: []string{m.ID},
				Suggestions:      []string{"Use weather-compatible drone or reschedule"},
			})
		}
	}
}

func checkBudget(p *Pass, m model.Mission) {
	b := cost.ForMission(p.Registry, m)
	if b.WithinBudget {
		return
	}
	p.Report(model.Conflict{
		Type:           model.ConflictBudgetOverrun,
		Severity:       model.SeverityHigh,
		AffectedEntity: m.ID,
		Description: fmt.Sprintf("Mission costs (%.2f) exceed budget (%.2f) by %.2f",
			b.Total, b.Budget, b.Overrun()),
		AffectedMissions: []string{m.ID},
		Suggestions: []string{
			fmt.Sprintf("Increase mission budget to %.2f", b.Total),
			"Reassign to less expensive pilots",
			"Reduce mission scope",
		},
	})
}

func checkLocation(p *Pass, m model.Mission) {
	for _, name := range m.AssignedPilots {
		pilot, ok := p.Registry.Pilot(name)
		if !ok || rules.SameLocation(pilot.Location, m.Location) {
			continue
		}
		p.Report(model.Conflict{
			Type:             model.ConflictLocationMismatch,
			Severity:         model.SeverityWarning,
			AffectedEntity:   name,
			Description:      fmt.Sprintf("Pilot located in '%s' but mission is in '%s'", pilot.Location, m.Location),
			AffectedMissions: []string{m.ID},
			Suggestions:      []string{"Factor in travel time/costs", "Use local pilot if available"},
		})
	}
	for _, id := range m.AssignedDrones {
		d, ok := p.Registry.Drone(id)
		if !ok || rules.SameLocation(d.Location, m.Location) {
			continue
		}
		p.Report(model.Conflict{
			Type:             model.ConflictLocationMismatch,
			Severity:         model.SeverityWarning,
			AffectedEntity:   id,
			Description:      fmt.Sprintf("Drone located in '%s' but mission is in '%s'", d.Location, m.Location),
			AffectedMissions: []string{m.ID},
			Suggestions:      []string{"Arrange drone transportation", "Use local drone if available"},
		})
	}
}

// checkDoubleBooking reports each overlapping (resource, mission pair) once,
// when the first mission of the pair is visited.
func checkDoubleBooking(p *Pass, m model.Mission) {
	for _, name := range m.AssignedPilots {
		if _, ok := p.Registry.Pilot(name); !ok {
			continue
		}
		for _, other := range overlapping(p, m, p.Registry.PilotMissions(name)) {
			if !p.Once(pairKey("pilot", name, m.ID, other)) {
				continue
			}
			p.Report(model.Conflict{
				Type:             model.ConflictDoubleBooking,
				Severity:         model.SeverityCritical,
				AffectedEntity:   name,
				Description:      fmt.Sprintf("Pilot assigned to overlapping missions: %s and %s", m.ID, other),
				AffectedMissions: []string{m.ID, other},
				Suggestions:      []string{"Reassign one mission to different pilot", "Reschedule one mission"},
			})
		}
	}
	for _, id := range m.AssignedDrones {
		if _, ok := p.Registry.Drone(id); !ok {
			continue
		}
		for _, other := range overlapping(p, m, p.Registry.DroneMissions(id)) {
			if !p.Once(pairKey("drone", id, m.ID, other)) {
				continue
			}
			p.Report(model.Conflict{
				Type:             model.ConflictDoubleBooking,
				Severity:         model.SeverityCritical,
				AffectedEntity:   id,
				Description:      fmt.Sprintf("Drone assigned to overlapping missions: %s and %s", m.ID, other),
				AffectedMissions: []string{m.ID, other},
				Suggestions:      []string{"Reassign one mission to different drone", "Reschedule one mission"},
			})
		}
	}
}

func overlapping(p *Pass, m model.Mission, missionIDs []string) []string {
	var out []string
	for _, id := range missionIDs {
		if id == m.ID {
			continue
		}
		other, ok := p.Registry.Mission(id)
		if ok && m.OverlapsWith(other) {
			out = append(out, id)
		}
	}
	return out
}

func pairKey(kind, key, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return kind + "\x00" + key + "\x00" + a + "\x00" + b
}
