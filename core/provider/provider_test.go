package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Snapshot {
	return Snapshot{
		Pilots: []Row{{ColName: "Arjun", ColStatus: "Available", ColCurrentAssignment: "PRJ001"}},
		Drones: []Row{{ColDroneID: "D001", ColStatus: "Available"}},
		Missions: []Row{
			{ColProjectID: "PRJ001", ColAssignedPilots: "Arjun, Neha"},
			{ColProjectID: "PRJ002", ColAssignedPilots: "-"},
		},
	}
}

func TestSplitAndJoinList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" - "))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,, b "))
	assert.Equal(t, "a, b", JoinList([]string{"a", "b"}))
}

func TestSnapshotAssignment(t *testing.T) {
	s := sample()
	require.NoError(t, s.SetPilotAssignment("Arjun", "PRJ002"))
	assert.Equal(t, "PRJ002", s.Pilots[0][ColCurrentAssignment])
	assert.Equal(t, "Arjun", s.Missions[1][ColAssignedPilots])
	assert.Equal(t, "Arjun, Neha", s.Missions[0][ColAssignedPilots])

	require.NoError(t, s.SetPilotAssignment("Arjun", ""))
	assert.Empty(t, s.Pilots[0][ColCurrentAssignment])
	assert.Equal(t, "Neha", s.Missions[0][ColAssignedPilots])
	assert.Empty(t, s.Missions[1][ColAssignedPilots])

	err := s.SetPilotAssignment("Arjun", "PRJ404")
	assert.ErrorIs(t, err, ErrUnknownKey)
	err = s.SetDroneAssignment("D404", "PRJ001")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(sample())
	require.NoError(t, m.UpdateDroneStatus(ctx, "D001", "Deployed"))
	require.NoError(t, m.UpdateDroneAssignment(ctx, "D001", "PRJ001"))

	snap, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Deployed", snap.Drones[0][ColStatus])
	assert.Equal(t, "D001", snap.Missions[0][ColAssignedDrones])

	snap.Drones[0][ColStatus] = "Grounded"
	again, _ := m.Load(ctx)
	assert.Equal(t, "Deployed", again.Drones[0][ColStatus])

	m.OnChange = func(Snapshot) error { return errors.New("disk full") }
	assert.Error(t, m.UpdatePilotStatus(ctx, "Arjun", "On Leave"))
	again, _ = m.Load(ctx)
	assert.Equal(t, "Available", again.Pilots[0][ColStatus])

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, m.UpdatePilotStatus(cancelled, "Arjun", "On Leave"), context.Canceled)
}
