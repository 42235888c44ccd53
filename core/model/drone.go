package model

import "strings"

// DroneStatus is the operational state of a drone.
type DroneStatus string

const (
	DroneAvailable   DroneStatus = "Available"
	DroneDeployed    DroneStatus = "Deployed"
	DroneMaintenance DroneStatus = "Maintenance"
	DroneGrounded    DroneStatus = "Grounded"
)

// DroneStatuses lists every drone status in display order.
var DroneStatuses = []DroneStatus{DroneAvailable, DroneDeployed, DroneMaintenance, DroneGrounded}

// ParseDroneStatus maps free-form input to a status. Unknown input yields
// DroneGrounded and ok=false.
func ParseDroneStatus(s string) (DroneStatus, bool) {
	switch normalizeStatus(s) {
	case "available":
		return DroneAvailable, true
	case "deployed", "assigned":
		return DroneDeployed, true
	case "maintenance", "in maintenance":
		return DroneMaintenance, true
	case "grounded":
		return DroneGrounded, true
	default:
		return DroneGrounded, false
	}
}

// WeatherRating is a drone's normalized resistance class.
type WeatherRating string

const (
	RatingStandard WeatherRating = "Standard"
	RatingIP43     WeatherRating = "IP43"
	RatingIP67     WeatherRating = "IP67"
)

var ratingVariants = map[string]WeatherRating{
	"standard":              RatingStandard,
	"ip43":                  RatingIP43,
	"ip67":                  RatingIP67,
	"ip43 (rain)":           RatingIP43,
	"ip67 (heavy rain)":     RatingIP67,
	"none (clear sky only)": RatingStandard,
	"none":                  RatingStandard,
}

// NormalizeWeatherRating maps free-form input such as "IP43 (Rain)" to a
// rating. Known variants match first, then the text before any parenthesis.
// Anything unrecognized is Standard.
func NormalizeWeatherRating(s string) WeatherRating {
	v := strings.ToLower(strings.TrimSpace(s))
	if r, ok := ratingVariants[v]; ok {
		return r
	}
	if i := strings.Index(v, "("); i >= 0 {
		if r, ok := ratingVariants[strings.TrimSpace(v[:i])]; ok {
			return r
		}
	}
	return RatingStandard
}

// DefaultMaxFlightMinutes applies when the source omits a flight time.
const DefaultMaxFlightMinutes = 30

// Drone is a piece of flight equipment. ID is its identity.
type Drone struct {
	ID               string        `json:"drone_id" yaml:"drone_id"`
	Model            string        `json:"model" yaml:"model"`
	Capabilities     []string      `json:"capabilities" yaml:"capabilities"`
	WeatherRating    WeatherRating `json:"weather_rating" yaml:"weather_rating"`
	Status           DroneStatus   `json:"status" yaml:"status"`
	Location         string        `json:"location" yaml:"location"`
	MaintenanceDue   Date          `json:"maintenance_due,omitempty" yaml:"maintenance_due,omitempty"`
	MaxFlightMinutes int           `json:"max_flight_minutes" yaml:"max_flight_minutes"`
	BatteryHealth    int           `json:"battery_health" yaml:"battery_health"`
	Notes            string        `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Validate checks the construction invariants of a drone.
func (d Drone) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return invalid("drone", d.ID, "drone_id", "is required")
	}
	if d.MaxFlightMinutes <= 0 {
		return invalid("drone", d.ID, "max_flight_minutes", "must be positive")
	}
	if d.BatteryHealth < 0 || d.BatteryHealth > 100 {
		return invalid("drone", d.ID, "battery_health", "must be between 0 and 100")
	}
	return nil
}

// MaintenanceDueBy reports whether maintenance falls due on or before day.
func (d Drone) MaintenanceDueBy(day Date) bool {
	return !d.MaintenanceDue.IsZero() && day.NotBefore(d.MaintenanceDue)
}
