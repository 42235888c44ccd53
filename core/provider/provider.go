// Package provider defines the boundary between the engine and the
// persistent store that owns pilot, drone and mission records.
package provider

import (
	"context"
	"errors"
)

// Row is one raw record keyed by column name. Values are left unparsed so
// every backend shares the same ingest rules.
type Row map[string]string

// Snapshot is the full content of the store at one point in time.
type Snapshot struct {
	Pilots   []Row `json:"pilots" yaml:"pilots"`
	Drones   []Row `json:"drones" yaml:"drones"`
	Missions []Row `json:"missions" yaml:"missions"`
}

// Provider loads snapshots and durably records mutations. A mutation
// returning nil has been committed. An empty missionID clears the
// assignment.
type Provider interface {
	Load(ctx context.Context) (Snapshot, error)
	UpdatePilotStatus(ctx context.Context, name, status string) error
	UpdateDroneStatus(ctx context.Context, id, status string) error
	UpdatePilotAssignment(ctx context.Context, name, missionID string) error
	UpdateDroneAssignment(ctx context.Context, id, missionID string) error
}

// Closer is implemented by providers holding connections or files.
type Closer interface {
	Close() error
}

// ErrUnknownKey is returned by providers when a mutation names a record
// they do not hold.
var ErrUnknownKey = errors.New("provider: unknown key")

// Column names shared by every backend.
const (
	ColName              = "name"
	ColSkills            = "skills"
	ColCertifications    = "certifications"
	ColExperienceHours   = "experience_hours"
	ColLocation          = "location"
	ColStatus            = "status"
	ColCurrentAssignment = "current_assignment"
	ColAvailableFrom     = "available_from"
	ColLeaveStart        = "leave_start"
	ColLeaveEnd          = "leave_end"
	ColDailyRate         = "daily_rate_inr"
	ColHourlyRate        = "hourly_rate"
	ColEmail             = "email"
	ColPhone             = "phone"

	ColDroneID        = "drone_id"
	ColModel          = "model"
	ColCapabilities   = "capabilities"
	ColWeatherRating  = "weather_resistance"
	ColMaintenanceDue = "maintenance_due"
	ColMaxFlightTime  = "max_flight_time"
	ColBatteryHealth  = "battery_health"
	ColNotes          = "notes"

	ColProjectID      = "project_id"
	ColClient         = "client"
	ColProject        = "project"
	ColRequiredSkills = "required_skills"
	ColRequiredCerts  = "required_certs"
	ColDroneReqs      = "drone_requirements"
	ColStartDate      = "start_date"
	ColEndDate        = "end_date"
	ColPriority       = "priority"
	ColBudget         = "mission_budget_inr"
	ColWeather        = "weather_forecast"
	ColAssignedPilots = "assigned_pilots"
	ColAssignedDrones = "assigned_drones"
)
