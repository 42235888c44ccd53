package mqtt

import (
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/kilianp07/skyops/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher records commands and acknowledges them immediately. Keys in
// Reject get a negative ack, keys in FailKeys fail to publish.
type MockPublisher struct {
	Commands []coremqtt.Command
	FailKeys map[string]bool
	Reject   map[string]string
	acks     map[string]coremqtt.Ack
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		FailKeys: make(map[string]bool),
		Reject:   make(map[string]string),
		acks:     make(map[string]coremqtt.Ack),
	}
}

// SendCommand records the command or fails when its key is in FailKeys.
func (m *MockPublisher) SendCommand(cmd coremqtt.Command) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailKeys[cmd.Key] {
		return "", fmt.Errorf("publish failed")
	}
	if cmd.ID == "" {
		cmd.ID = fmt.Sprintf("cmd-%d", len(m.Commands)+1)
	}
	m.Commands = append(m.Commands, cmd)
	ack := coremqtt.Ack{CommandID: cmd.ID, OK: true}
	if reason, ok := m.Reject[cmd.Key]; ok {
		ack = coremqtt.Ack{CommandID: cmd.ID, Error: reason}
	}
	m.acks[cmd.ID] = ack
	return cmd.ID, nil
}

// WaitForAck returns the stored ack without waiting.
func (m *MockPublisher) WaitForAck(commandID string, _ time.Duration) (coremqtt.Ack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ack, ok := m.acks[commandID]
	if !ok {
		return coremqtt.Ack{}, fmt.Errorf("%w: %s", coremqtt.ErrUnknownCommand, commandID)
	}
	delete(m.acks, commandID)
	return ack, nil
}

// Sent returns a copy of the recorded commands.
func (m *MockPublisher) Sent() []coremqtt.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.Command(nil), m.Commands...)
}
