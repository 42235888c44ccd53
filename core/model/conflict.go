package model

import "time"

// ConflictType identifies the rule that produced a conflict.
type ConflictType string

const (
	ConflictDoubleBooking          ConflictType = "Double Booking"
	ConflictSkillMismatch          ConflictType = "Skill Mismatch"
	ConflictMissingCertification   ConflictType = "Missing Certification"
	ConflictBudgetOverrun          ConflictType = "Budget Overrun"
	ConflictLocationMismatch       ConflictType = "Location Mismatch"
	ConflictWeatherIncompatibility ConflictType = "Weather Incompatibility"
	ConflictDroneMaintenance       ConflictType = "Drone In Maintenance"
	ConflictPilotUnavailable       ConflictType = "Pilot Unavailable"
	ConflictDroneUnavailable       ConflictType = "Drone Unavailable"
)

// Severity ranks how strongly a conflict blocks execution.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityWarning  Severity = "Warning"
)

// Severities lists severities from most to least blocking.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityWarning}

// Conflict is an inconsistency found during a detection pass. Conflicts are
// recomputed on every pass and never patched.
type Conflict struct {
	ID               string       `json:"id"`
	Type             ConflictType `json:"type"`
	Severity         Severity     `json:"severity"`
	AffectedEntity   string       `json:"affected_entity"`
	Description      string       `json:"description"`
	AffectedMissions []string     `json:"affected_missions"`
	Suggestions      []string     `json:"suggestions,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Involves reports whether the conflict references the given mission.
func (c Conflict) Involves(missionID string) bool {
	for _, id := range c.AffectedMissions {
		if id == missionID {
			return true
		}
	}
	return false
}
