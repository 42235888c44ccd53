package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kilianp07/skyops/core/conflict"
	"github.com/kilianp07/skyops/core/engine"
	"github.com/kilianp07/skyops/core/model"
)

func render(w io.Writer, resp engine.Response) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	switch {
	case resp.PilotMatches != nil:
		tw := newTable(w, "Pilot", "Location", "Rate", "Missing")
		for _, m := range resp.PilotMatches {
			tw.AppendRow(table.Row{m.Pilot.Name, m.Pilot.Location, m.Pilot.HourlyRate, missing(m.Missing)})
		}
		tw.Render()
	case resp.DroneMatches != nil:
		tw := newTable(w, "Drone", "Model", "Weather", "Location", "Missing")
		for _, m := range resp.DroneMatches {
			tw.AppendRow(table.Row{m.Drone.ID, m.Drone.Model, m.Drone.WeatherRating, m.Drone.Location, missing(m.Missing)})
		}
		tw.Render()
	case resp.Pilots != nil:
		renderPilots(w, resp.Pilots)
	case resp.Drones != nil:
		renderDrones(w, resp.Drones)
	case resp.Cost != nil:
		c := resp.Cost
		tw := newTable(w, "Pilot", "Rate", "Hours", "Cost")
		for _, p := range c.Pilots {
			tw.AppendRow(table.Row{p.Pilot, p.HourlyRate, p.Hours, p.Cost})
		}
		tw.AppendFooter(table.Row{"Total", "", "", c.Total})
		tw.Render()
		fmt.Fprintf(w, "%s: %d day(s), budget %.2f, within budget: %t\n", c.MissionID, c.DurationDays, c.Budget, c.WithinBudget)
		for _, warn := range c.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warn)
		}
	case resp.Projection != nil:
		p := resp.Projection
		fmt.Fprintf(w, "%s with %s: current %.2f, projected %.2f, budget %.2f, remaining %.2f, within budget: %t\n",
			p.MissionID, p.Line.Pilot, p.CurrentTotal, p.ProjectedTotal, p.Budget, p.Remaining, p.WithinBudget)
	case resp.Mutation != nil:
		m := resp.Mutation
		fmt.Fprintf(w, "%s %s: committed [%s]\n", m.Operation, m.Entity, strings.Join(m.Committed, ", "))
		renderDetection(w, m.Detection)
	case resp.Detection != nil:
		renderDetection(w, *resp.Detection)
	case resp.Availability != nil:
		names := make([]string, 0, len(resp.Availability))
		for n := range resp.Availability {
			names = append(names, n)
		}
		sort.Strings(names)
		tw := newTable(w, "Pilot", "Status", "Location", "Rate", "Available For")
		for _, n := range names {
			a := resp.Availability[n]
			tw.AppendRow(table.Row{n, a.Status, a.Location, a.HourlyRate, strings.Join(a.AvailableFor, ", ")})
		}
		tw.Render()
	case resp.Summary != nil:
		s := resp.Summary
		tw := newTable(w, "Metric", "Value")
		tw.AppendRows([]table.Row{
			{"Pilots", s.Pilots},
			{"Drones", s.Drones},
			{"Missions", s.Missions},
			{"Mean hourly rate", fmt.Sprintf("%.2f", s.MeanHourlyRate)},
			{"Mean battery health", fmt.Sprintf("%.1f", s.MeanBatteryHealth)},
			{"Conflicts", s.Conflicts},
			{"Critical issues", s.HasCritical},
		})
		tw.Render()
		fmt.Fprintln(w, s.ConflictSummary)
	default:
		fmt.Fprintln(w, "no results")
	}
	return nil
}

func renderPilots(w io.Writer, pilots []model.Pilot) {
	tw := newTable(w, "Pilot", "Status", "Location", "Skills", "Certifications", "Rate")
	for _, p := range pilots {
		tw.AppendRow(table.Row{p.Name, p.Status, p.Location, strings.Join(p.Skills, ", "), strings.Join(p.Certifications, ", "), p.HourlyRate})
	}
	tw.Render()
}

func renderDrones(w io.Writer, drones []model.Drone) {
	tw := newTable(w, "Drone", "Model", "Status", "Location", "Capabilities", "Weather")
	for _, d := range drones {
		tw.AppendRow(table.Row{d.ID, d.Model, d.Status, d.Location, strings.Join(d.Capabilities, ", "), d.WeatherRating})
	}
	tw.Render()
}

func renderDetection(w io.Writer, res conflict.Result) {
	if len(res.Conflicts) > 0 {
		tw := newTable(w, "Severity", "Type", "Entity", "Missions", "Description")
		for _, c := range res.Conflicts {
			tw.AppendRow(table.Row{c.Severity, c.Type, c.AffectedEntity, strings.Join(c.AffectedMissions, ", "), c.Description})
		}
		tw.Render()
	}
	fmt.Fprintln(w, res.Summary)
}

func newTable(w io.Writer, header ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row(header))
	return tw
}

func missing(m []string) string {
	if len(m) == 0 {
		return "-"
	}
	return strings.Join(m, "; ")
}
