// Package ingest turns raw provider rows into validated entities. A row that
// cannot be converted is skipped with a warning and never aborts the load.
package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/skyops/core/logger"
	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/provider"
	"github.com/kilianp07/skyops/core/registry"
)

// DefaultDailyRate applies when a pilot row has neither a daily nor an
// hourly rate.
const DefaultDailyRate = 1500.0

// Warning describes a skipped row or a field that fell back to a default.
type Warning struct {
	Kind    registry.Kind `json:"kind"`
	Row     int           `json:"row"`
	Key     string        `json:"key,omitempty"`
	Message string        `json:"message"`
	Skipped bool          `json:"skipped"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s row %d (%s): %s", w.Kind, w.Row, w.Key, w.Message)
}

// Result holds the converted entities and the assignment hints found in
// resource rows.
type Result struct {
	Pilots   []model.Pilot
	Drones   []model.Drone
	Missions []model.Mission
	Refs     []registry.BackRef
	Warnings []Warning
}

// Parser converts snapshots.
type Parser struct {
	log logger.Logger
}

// New returns a parser logging warnings to log.
func New(log logger.Logger) *Parser {
	return &Parser{log: logger.OrNop(log)}
}

// Parse converts every row of s.
func (p *Parser) Parse(s provider.Snapshot) Result {
	var res Result
	for i, row := range s.Pilots {
		pilot, ref, warns, err := parsePilot(row)
		res.Warnings = append(res.Warnings, p.tag(registry.KindPilot, i, row[provider.ColName], warns, err)...)
		if err != nil {
			continue
		}
		res.Pilots = append(res.Pilots, pilot)
		if ref != "" {
			res.Refs = append(res.Refs, registry.BackRef{Kind: registry.KindPilot, Key: pilot.Name, MissionID: ref})
		}
	}
	for i, row := range s.Drones {
		drone, ref, warns, err := parseDrone(row)
		res.Warnings = append(res.Warnings, p.tag(registry.KindDrone, i, row[provider.ColDroneID], warns, err)...)
		if err != nil {
			continue
		}
		res.Drones = append(res.Drones, drone)
		if ref != "" {
			res.Refs = append(res.Refs, registry.BackRef{Kind: registry.KindDrone, Key: drone.ID, MissionID: ref})
		}
	}
	for i, row := range s.Missions {
		m, warns, err := parseMission(row)
		res.Warnings = append(res.Warnings, p.tag(registry.KindMission, i, row[provider.ColProjectID], warns, err)...)
		if err != nil {
			continue
		}
		res.Missions = append(res.Missions, m)
	}
	p.log.Infof("ingest: parsed %d/%d pilots, %d/%d drones, %d/%d missions",
		len(res.Pilots), len(s.Pilots), len(res.Drones), len(s.Drones), len(res.Missions), len(s.Missions))
	return res
}

func (p *Parser) tag(kind registry.Kind, row int, key string, warns []string, err error) []Warning {
	out := make([]Warning, 0, len(warns)+1)
	for _, msg := range warns {
		out = append(out, Warning{Kind: kind, Row: row, Key: key, Message: msg})
	}
	if err != nil {
		out = append(out, Warning{Kind: kind, Row: row, Key: key, Message: err.Error(), Skipped: true})
	}
	for _, w := range out {
		p.log.Warnw("ingest: row warning", map[string]any{
			"kind": string(w.Kind), "row": w.Row, "key": w.Key, "message": w.Message, "skipped": w.Skipped,
		})
	}
	return out
}

func parsePilot(row provider.Row) (model.Pilot, string, []string, error) {
	var warns []string
	status, ok := model.ParsePilotStatus(orDefault(row[provider.ColStatus], string(model.PilotAvailable)))
	if !ok {
		warns = append(warns, fmt.Sprintf("invalid status %q, using %s", row[provider.ColStatus], status))
	}
	exp, err := intField(row, provider.ColExperienceHours, 0)
	if err != nil {
		return model.Pilot{}, "", warns, err
	}
	rate, err := hourlyRate(row)
	if err != nil {
		return model.Pilot{}, "", warns, err
	}
	p := model.Pilot{
		Name:            strings.TrimSpace(row[provider.ColName]),
		Skills:          provider.SplitList(row[provider.ColSkills]),
		Certifications:  provider.SplitList(row[provider.ColCertifications]),
		ExperienceHours: exp,
		Location:        strings.TrimSpace(row[provider.ColLocation]),
		Status:          status,
		HourlyRate:      rate,
		Email:           strings.TrimSpace(row[provider.ColEmail]),
		Phone:           strings.TrimSpace(row[provider.ColPhone]),
	}
	if p.AvailableFrom, err = dateField(row, provider.ColAvailableFrom); err != nil {
		return model.Pilot{}, "", warns, err
	}
	if p.LeaveStart, err = dateField(row, provider.ColLeaveStart); err != nil {
		return model.Pilot{}, "", warns, err
	}
	if p.LeaveEnd, err = dateField(row, provider.ColLeaveEnd); err != nil {
		return model.Pilot{}, "", warns, err
	}
	if err := p.Validate(); err != nil {
		return model.Pilot{}, "", warns, err
	}
	return p, backRef(row[provider.ColCurrentAssignment]), warns, nil
}

func parseDrone(row provider.Row) (model.Drone, string, []string, error) {
	var warns []string
	status, ok := model.ParseDroneStatus(orDefault(row[provider.ColStatus], string(model.DroneAvailable)))
	if !ok {
		warns = append(warns, fmt.Sprintf("invalid status %q, using %s", row[provider.ColStatus], status))
	}
	flight, err := intField(row, provider.ColMaxFlightTime, model.DefaultMaxFlightMinutes)
	if err != nil {
		return model.Drone{}, "", warns, err
	}
	battery, err := intField(row, provider.ColBatteryHealth, 100)
	if err != nil {
		return model.Drone{}, "", warns, err
	}
	due, err := dateField(row, provider.ColMaintenanceDue)
	if err != nil {
		return model.Drone{}, "", warns, err
	}
	d := model.Drone{
		ID:               strings.TrimSpace(row[provider.ColDroneID]),
		Model:            strings.TrimSpace(row[provider.ColModel]),
		Capabilities:     provider.SplitList(row[provider.ColCapabilities]),
		WeatherRating:    model.NormalizeWeatherRating(row[provider.ColWeatherRating]),
		Status:           status,
		Location:         strings.TrimSpace(row[provider.ColLocation]),
		MaintenanceDue:   due,
		MaxFlightMinutes: flight,
		BatteryHealth:    battery,
		Notes:            strings.TrimSpace(row[provider.ColNotes]),
	}
	if err := d.Validate(); err != nil {
		return model.Drone{}, "", warns, err
	}
	return d, backRef(row[provider.ColCurrentAssignment]), warns, nil
}

func parseMission(row provider.Row) (model.Mission, []string, error) {
	var warns []string
	status, ok := model.ParseMissionStatus(row[provider.ColStatus])
	if !ok {
		warns = append(warns, fmt.Sprintf("invalid status %q, using %s", row[provider.ColStatus], status))
	}
	budget, err := floatField(row, provider.ColBudget, 0)
	if err != nil {
		return model.Mission{}, warns, err
	}
	start, err := dateField(row, provider.ColStartDate)
	if err != nil {
		return model.Mission{}, warns, err
	}
	end, err := dateField(row, provider.ColEndDate)
	if err != nil {
		return model.Mission{}, warns, err
	}
	id := strings.TrimSpace(row[provider.ColProjectID])
	m := model.Mission{
		ID:                     id,
		Client:                 strings.TrimSpace(row[provider.ColClient]),
		Project:                orDefault(row[provider.ColProject], id),
		Location:               strings.TrimSpace(row[provider.ColLocation]),
		RequiredSkills:         provider.SplitList(row[provider.ColRequiredSkills]),
		RequiredCertifications: provider.SplitList(row[provider.ColRequiredCerts]),
		DroneRequirements:      provider.SplitList(row[provider.ColDroneReqs]),
		Start:                  start,
		End:                    end,
		Priority:               orDefault(row[provider.ColPriority], model.DefaultPriority),
		Budget:                 budget,
		ExpectedWeather:        model.ParseWeather(row[provider.ColWeather]),
		AssignedPilots:         provider.SplitList(row[provider.ColAssignedPilots]),
		AssignedDrones:         provider.SplitList(row[provider.ColAssignedDrones]),
		Status:                 status,
	}
	if err := m.Validate(); err != nil {
		return model.Mission{}, warns, err
	}
	return m, warns, nil
}

func backRef(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	return s
}

func hourlyRate(row provider.Row) (float64, error) {
	if strings.TrimSpace(row[provider.ColHourlyRate]) != "" {
		return floatField(row, provider.ColHourlyRate, 0)
	}
	daily, err := floatField(row, provider.ColDailyRate, DefaultDailyRate)
	if err != nil {
		return 0, err
	}
	return daily / 8, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func floatField(row provider.Row, col string, def float64) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(row[col]), ",", "")
	if s == "" || s == "-" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: invalid number %q", col, row[col])
	}
	return v, nil
}

func intField(row provider.Row, col string, def int) (int, error) {
	v, err := floatField(row, col, float64(def))
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func dateField(row provider.Row, col string) (model.Date, error) {
	d, err := model.ParseDate(row[col])
	if err != nil {
		return model.Date{}, fmt.Errorf("%s: %w", col, err)
	}
	return d, nil
}
