// Package request defines the typed queries and commands accepted by the
// engine. Each variant carries only the fields it needs.
package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/skyops/core/model"
)

// Kind is the wire name of a request variant.
type Kind string

const (
	KindFindPilots      Kind = "find_pilots"
	KindFindDrones      Kind = "find_drones"
	KindCheckConflicts  Kind = "check_conflicts"
	KindCalculateCosts  Kind = "calculate_costs"
	KindAssignPilot     Kind = "assign_pilot"
	KindAssignDrone     Kind = "assign_drone"
	KindUpdateStatus    Kind = "update_status"
	KindGetAvailability Kind = "get_availability"
	KindGetSummary      Kind = "get_summary"
	KindUnknown         Kind = "unknown"
)

// Request is implemented by every variant.
type Request interface {
	Kind() Kind
}

// Mutating reports whether r changes provider state.
func Mutating(r Request) bool {
	switch r.(type) {
	case AssignPilot, AssignDrone, UpdateStatus:
		return true
	}
	return false
}

// FindPilots searches pilots. With Date set it lists pilots free that day.
// With MissionID it ranks candidates for that mission. Otherwise the
// attribute filters apply.
type FindPilots struct {
	MissionID      string     `json:"mission_id,omitempty"`
	Skill          string     `json:"skill,omitempty"`
	Certification  string     `json:"certification,omitempty"`
	Location       string     `json:"location,omitempty"`
	LocationFilter bool       `json:"location_filter,omitempty"`
	Date           model.Date `json:"date,omitempty"`
}

// FindDrones searches drones, ranking them for MissionID when set.
type FindDrones struct {
	MissionID      string `json:"mission_id,omitempty"`
	Capability     string `json:"capability,omitempty"`
	WeatherRating  string `json:"weather_rating,omitempty"`
	Location       string `json:"location,omitempty"`
	LocationFilter bool   `json:"location_filter,omitempty"`
}

// CheckConflicts runs detection, optionally filtered to one mission.
type CheckConflicts struct {
	MissionID string `json:"mission_id,omitempty"`
}

// CalculateCosts estimates a mission. With PilotName it projects the cost
// of adding that pilot instead.
type CalculateCosts struct {
	MissionID string `json:"mission_id"`
	PilotName string `json:"pilot_name,omitempty"`
}

// AssignPilot assigns a pilot to a mission.
type AssignPilot struct {
	PilotName string `json:"pilot_name"`
	MissionID string `json:"mission_id"`
}

// AssignDrone assigns a drone to a mission.
type AssignDrone struct {
	DroneID   string `json:"drone_id"`
	MissionID string `json:"mission_id"`
}

// Entity names the collection an UpdateStatus targets.
type Entity string

const (
	EntityPilot Entity = "pilot"
	EntityDrone Entity = "drone"
)

// UpdateStatus sets the status of a pilot or drone. Status is validated
// against the entity's status set during decoding.
type UpdateStatus struct {
	Entity Entity `json:"entity_type"`
	Key    string `json:"key"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// GetAvailability summarizes pilot availability.
type GetAvailability struct{}

// GetSummary returns the operations summary.
type GetSummary struct{}

// Unknown carries an unrecognized query type.
type Unknown struct {
	Raw string `json:"raw"`
}

func (FindPilots) Kind() Kind      { return KindFindPilots }
func (FindDrones) Kind() Kind      { return KindFindDrones }
func (CheckConflicts) Kind() Kind  { return KindCheckConflicts }
func (CalculateCosts) Kind() Kind  { return KindCalculateCosts }
func (AssignPilot) Kind() Kind     { return KindAssignPilot }
func (AssignDrone) Kind() Kind     { return KindAssignDrone }
func (UpdateStatus) Kind() Kind    { return KindUpdateStatus }
func (GetAvailability) Kind() Kind { return KindGetAvailability }
func (GetSummary) Kind() Kind      { return KindGetSummary }
func (Unknown) Kind() Kind         { return KindUnknown }

// ErrInvalid is matched by DecodeError through errors.Is.
var ErrInvalid = errors.New("invalid request")

// DecodeError reports a missing or malformed parameter.
type DecodeError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrInvalid }

// Decode converts the loose key/value form produced by front ends into a
// typed request. Unrecognized kinds decode to Unknown without error.
func Decode(kind string, params map[string]string) (Request, error) {
	p := params
	get := func(k string) string { return strings.TrimSpace(p[k]) }
	k := Kind(strings.ToLower(strings.TrimSpace(kind)))

	switch k {
	case KindFindPilots:
		r := FindPilots{
			MissionID:     get("mission_id"),
			Skill:         get("skill"),
			Certification: get("certification"),
			Location:      get("location"),
		}
		lf, err := boolParam(k, "location_filter", get("location_filter"))
		if err != nil {
			return nil, err
		}
		r.LocationFilter = lf || (r.MissionID != "" && r.Location != "")
		if s := get("date"); s != "" {
			d, err := model.ParseDate(s)
			if err != nil {
				return nil, &DecodeError{Kind: k, Field: "date", Reason: "must be YYYY-MM-DD"}
			}
			r.Date = d
		}
		return r, nil
	case KindFindDrones:
		r := FindDrones{
			MissionID:     get("mission_id"),
			Capability:    get("capability"),
			WeatherRating: get("weather_rating"),
			Location:      get("location"),
		}
		lf, err := boolParam(k, "location_filter", get("location_filter"))
		if err != nil {
			return nil, err
		}
		r.LocationFilter = lf || (r.MissionID != "" && r.Location != "")
		return r, nil
	case KindCheckConflicts:
		return CheckConflicts{MissionID: get("mission_id")}, nil
	case KindCalculateCosts:
		r := CalculateCosts{MissionID: get("mission_id"), PilotName: get("pilot_name")}
		if r.MissionID == "" {
			return nil, required(k, "mission_id")
		}
		return r, nil
	case KindAssignPilot:
		r := AssignPilot{PilotName: get("pilot_name"), MissionID: get("mission_id")}
		if r.PilotName == "" {
			return nil, required(k, "pilot_name")
		}
		if r.MissionID == "" {
			return nil, required(k, "mission_id")
		}
		return r, nil
	case KindAssignDrone:
		r := AssignDrone{DroneID: get("drone_id"), MissionID: get("mission_id")}
		if r.DroneID == "" {
			return nil, required(k, "drone_id")
		}
		if r.MissionID == "" {
			return nil, required(k, "mission_id")
		}
		return r, nil
	case KindUpdateStatus:
		return decodeUpdateStatus(get)
	case KindGetAvailability:
		return GetAvailability{}, nil
	case KindGetSummary:
		return GetSummary{}, nil
	default:
		return Unknown{Raw: kind}, nil
	}
}

func decodeUpdateStatus(get func(string) string) (Request, error) {
	k := KindUpdateStatus
	r := UpdateStatus{Entity: Entity(strings.ToLower(get("entity_type"))), Reason: get("reason")}
	if r.Entity == "" {
		r.Entity = EntityPilot
	}
	switch r.Entity {
	case EntityPilot:
		r.Key = get("pilot_name")
	case EntityDrone:
		r.Key = get("drone_id")
	default:
		return nil, &DecodeError{Kind: k, Field: "entity_type", Reason: "must be pilot or drone"}
	}
	if r.Key == "" {
		r.Key = get("key")
	}
	if r.Key == "" {
		return nil, required(k, "pilot_name or drone_id")
	}
	raw := get("status")
	if raw == "" {
		return nil, required(k, "status")
	}
	if r.Entity == EntityPilot {
		st, ok := model.ParsePilotStatus(raw)
		if !ok {
			return nil, &DecodeError{Kind: k, Field: "status", Reason: fmt.Sprintf("%q is not a pilot status", raw)}
		}
		r.Status = string(st)
	} else {
		st, ok := model.ParseDroneStatus(raw)
		if !ok {
			return nil, &DecodeError{Kind: k, Field: "status", Reason: fmt.Sprintf("%q is not a drone status", raw)}
		}
		r.Status = string(st)
	}
	return r, nil
}

func required(k Kind, field string) error {
	return &DecodeError{Kind: k, Field: field, Reason: "is required"}
}

func boolParam(k Kind, field, v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &DecodeError{Kind: k, Field: field, Reason: "must be a boolean"}
	}
	return b, nil
}
