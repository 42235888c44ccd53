package provider

import (
	"context"
	"sync"
)

// Memory is a Provider over an in-memory snapshot. File-backed providers
// wrap it and persist through OnChange.
type Memory struct {
	mu   sync.Mutex
	snap Snapshot

	// OnChange runs after each mutation with the updated snapshot, under
	// the provider lock. A returned error rolls the mutation back.
	OnChange func(Snapshot) error
}

// NewMemory returns a provider serving a copy of s.
func NewMemory(s Snapshot) *Memory {
	return &Memory{snap: s.Clone()}
}

// Load returns a copy of the current snapshot.
func (m *Memory) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone(), nil
}

// Reset replaces the served snapshot.
func (m *Memory) Reset(s Snapshot) {
	m.mu.Lock()
	m.snap = s.Clone()
	m.mu.Unlock()
}

func (m *Memory) UpdatePilotStatus(ctx context.Context, name, status string) error {
	return m.mutate(ctx, func(s *Snapshot) error { return s.SetPilotStatus(name, status) })
}

func (m *Memory) UpdateDroneStatus(ctx context.Context, id, status string) error {
	return m.mutate(ctx, func(s *Snapshot) error { return s.SetDroneStatus(id, status) })
}

func (m *Memory) UpdatePilotAssignment(ctx context.Context, name, missionID string) error {
	return m.mutate(ctx, func(s *Snapshot) error { return s.SetPilotAssignment(name, missionID) })
}

func (m *Memory) UpdateDroneAssignment(ctx context.Context, id, missionID string) error {
	return m.mutate(ctx, func(s *Snapshot) error { return s.SetDroneAssignment(id, missionID) })
}

func (m *Memory) mutate(ctx context.Context, fn func(*Snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.snap.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if m.OnChange != nil {
		if err := m.OnChange(next); err != nil {
			return err
		}
	}
	m.snap = next
	return nil
}
