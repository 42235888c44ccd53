// Package events defines the engine events emitted on the event bus.
//
// Available event types:
//   - RefreshEvent: a new snapshot was loaded from the provider
//   - DetectionEvent: a detection pass completed
//   - MutationEvent: a mutation was attempted against the provider
package events

import (
	"time"

	"github.com/kilianp07/skyops/core/model"
)

// Event is implemented by every engine event.
type Event interface {
	EventName() string
}

// RefreshEvent is published after the engine swaps in a new snapshot, or
// fails to.
type RefreshEvent struct {
	Pilots     int
	Drones     int
	Missions   int
	Warnings   int
	Duplicates int
	Err        error
	Duration   time.Duration
	At         time.Time
}

// DetectionEvent is published after every detection pass.
type DetectionEvent struct {
	Conflicts  int
	BySeverity map[model.Severity]int
	ByType     map[model.ConflictType]int
	Summary    string
	Duration   time.Duration
	At         time.Time
}

// MutationEvent is published for every provider-backed mutation.
type MutationEvent struct {
	Operation string
	Entity    string
	MissionID string
	Status    string
	Err       error
	Duration  time.Duration
	At        time.Time
}

func (RefreshEvent) EventName() string   { return "refresh" }
func (DetectionEvent) EventName() string { return "detection" }
func (MutationEvent) EventName() string  { return "mutation" }
