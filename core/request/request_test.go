package request

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		kind   string
		params map[string]string
		want   Request
	}{
		{"find_pilots", map[string]string{"skill": "Survey"}, FindPilots{Skill: "Survey"}},
		{"FIND_DRONES", map[string]string{"mission_id": "PRJ001", "location": "Pune"},
			FindDrones{MissionID: "PRJ001", Location: "Pune", LocationFilter: true}},
		{"check_conflicts", nil, CheckConflicts{}},
		{"calculate_costs", map[string]string{"mission_id": "PRJ001", "pilot_name": "Arjun"},
			CalculateCosts{MissionID: "PRJ001", PilotName: "Arjun"}},
		{"assign_pilot", map[string]string{"pilot_name": "Arjun", "mission_id": "PRJ001"},
			AssignPilot{PilotName: "Arjun", MissionID: "PRJ001"}},
		{"assign_drone", map[string]string{"drone_id": "D001", "mission_id": "PRJ001"},
			AssignDrone{DroneID: "D001", MissionID: "PRJ001"}},
		{"update_status", map[string]string{"entity_type": "drone", "drone_id": "D001", "status": "maintenance"},
			UpdateStatus{Entity: EntityDrone, Key: "D001", Status: "Maintenance"}},
		{"get_availability", nil, GetAvailability{}},
		{"get_summary", nil, GetSummary{}},
		{"tell_a_joke", nil, Unknown{Raw: "tell_a_joke"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := Decode(tt.kind, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFindPilotsDate(t *testing.T) {
	got, err := Decode("find_pilots", map[string]string{"date": "2026-02-07"})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-07", got.(FindPilots).Date.String())

	_, err = Decode("find_pilots", map[string]string{"date": "tomorrow"})
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "date", de.Field)
}

func TestDecodeMissingFields(t *testing.T) {
	cases := map[string]map[string]string{
		"calculate_costs": {},
		"assign_pilot":    {"pilot_name": "Arjun"},
		"assign_drone":    {"mission_id": "PRJ001"},
		"update_status":   {"pilot_name": "Arjun"},
	}
	for kind, params := range cases {
		_, err := Decode(kind, params)
		assert.ErrorIs(t, err, ErrInvalid, kind)
	}
}

func TestDecodeUpdateStatusRejectsUnknownStatus(t *testing.T) {
	_, err := Decode("update_status", map[string]string{"pilot_name": "Arjun", "status": "napping"})
	assert.ErrorIs(t, err, ErrInvalid)

	got, err := Decode("update_status", map[string]string{"pilot_name": "Arjun", "status": "on leave", "reason": "vacation"})
	require.NoError(t, err)
	assert.Equal(t, UpdateStatus{Entity: EntityPilot, Key: "Arjun", Status: "On Leave", Reason: "vacation"}, got)
}

func TestMutating(t *testing.T) {
	assert.True(t, Mutating(AssignPilot{}))
	assert.True(t, Mutating(UpdateStatus{}))
	assert.False(t, Mutating(CheckConflicts{}))
}
