// Package mqtt defines the command bus used to forward engine mutations to
// the system of record and wait for its acknowledgment.
package mqtt

import "time"

// Command operations.
const (
	OpPilotStatus     = "pilot_status"
	OpDroneStatus     = "drone_status"
	OpPilotAssignment = "pilot_assignment"
	OpDroneAssignment = "drone_assignment"
)

// Command is one mutation published on the bus. Value carries the new
// status or mission ID; an empty value clears an assignment.
type Command struct {
	ID        string `json:"command_id"`
	Op        string `json:"op"`
	Entity    string `json:"entity"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

// Ack is the reply to a Command. OK false means the receiver refused it.
type Ack struct {
	CommandID string `json:"command_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// Client publishes commands and waits for their acknowledgments.
type Client interface {
	// SendCommand publishes cmd and returns the identifier used to track
	// the acknowledgment. cmd.ID is assigned when empty.
	SendCommand(cmd Command) (commandID string, err error)

	// WaitForAck waits for the acknowledgment of commandID or until the
	// timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (Ack, error)
}
