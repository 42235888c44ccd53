package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyops/core/model"
)

func fixture(t *testing.T) *Registry {
	t.Helper()
	pilots := []model.Pilot{
		{Name: "Arjun", Skills: []string{"Survey"}, Location: "Bangalore", Status: model.PilotAvailable, HourlyRate: 150},
		{Name: "Neha", Skills: []string{"Mapping"}, Location: "Mumbai", Status: model.PilotAvailable, HourlyRate: 200},
	}
	drones := []model.Drone{
		{ID: "D001", Model: "M300", WeatherRating: model.RatingIP43, Status: model.DroneAvailable, Location: "Bangalore", MaxFlightMinutes: 30, BatteryHealth: 100},
	}
	missions := []model.Mission{
		{ID: "PRJ001", Location: "Bangalore", Start: model.MustDate("2026-02-07"), End: model.MustDate("2026-02-09"), Budget: 5000, AssignedPilots: []string{"Arjun"}},
		{ID: "PRJ002", Location: "Mumbai", Start: model.MustDate("2026-02-08"), End: model.MustDate("2026-02-10"), Budget: 9000},
	}
	r, err := Build(pilots, drones, missions)
	require.NoError(t, err)
	return r
}

func TestBuildLookups(t *testing.T) {
	r := fixture(t)

	p, ok := r.Pilot("Arjun")
	require.True(t, ok)
	assert.Equal(t, 150.0, p.HourlyRate)

	_, ok = r.Pilot("Ghost")
	assert.False(t, ok)

	d, ok := r.Drone("D001")
	require.True(t, ok)
	assert.Equal(t, model.RatingIP43, d.WeatherRating)

	pilots, drones, missions := r.Counts()
	assert.Equal(t, []int{2, 1, 2}, []int{pilots, drones, missions})

	cur, ok := r.PilotAssignment("Arjun")
	require.True(t, ok)
	assert.Equal(t, "PRJ001", cur)

	_, ok = r.PilotAssignment("Neha")
	assert.False(t, ok)
}

func TestMissionReturnsCopy(t *testing.T) {
	r := fixture(t)
	m, _ := r.Mission("PRJ001")
	m.AssignedPilots[0] = "Mallory"

	again, _ := r.Mission("PRJ001")
	assert.Equal(t, []string{"Arjun"}, again.AssignedPilots)
}

func TestBuildDuplicates(t *testing.T) {
	pilots := []model.Pilot{
		{Name: "Arjun", HourlyRate: 100},
		{Name: "Neha", HourlyRate: 120},
		{Name: "Arjun", HourlyRate: 300},
	}
	r, err := Build(pilots, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, []DuplicateKey{{Kind: KindPilot, Key: "Arjun"}}, le.Duplicates)

	require.NotNil(t, r)
	list := r.Pilots()
	require.Len(t, list, 2)
	assert.Equal(t, "Arjun", list[0].Name)
	assert.Equal(t, 300.0, list[0].HourlyRate)
}

func TestBackRefsSeedEdges(t *testing.T) {
	missions := []model.Mission{
		{ID: "A", Start: model.MustDate("2026-03-01"), End: model.MustDate("2026-03-02"), Budget: 1},
		{ID: "B", Start: model.MustDate("2026-03-02"), End: model.MustDate("2026-03-03"), Budget: 1, AssignedPilots: []string{"Arjun"}},
	}
	pilots := []model.Pilot{{Name: "Arjun", HourlyRate: 1}}
	r, err := Build(pilots, nil, missions,
		BackRef{Kind: KindPilot, Key: "Arjun", MissionID: "A"},
		BackRef{Kind: KindPilot, Key: "Arjun", MissionID: "NOPE"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, r.PilotMissions("Arjun"))
	a, _ := r.Mission("A")
	assert.Equal(t, []string{"Arjun"}, a.AssignedPilots)
	assert.Len(t, r.DanglingRefs(), 1)
}

func TestWithPilotAssignment(t *testing.T) {
	r := fixture(t)

	next, err := r.WithPilotAssignment("Arjun", "PRJ002")
	require.NoError(t, err)

	cur, _ := next.PilotAssignment("Arjun")
	assert.Equal(t, "PRJ002", cur)
	assert.Equal(t, []string{"PRJ001", "PRJ002"}, next.PilotMissions("Arjun"))

	// the original snapshot is untouched
	assert.Equal(t, []string{"PRJ001"}, r.PilotMissions("Arjun"))
	m, _ := r.Mission("PRJ002")
	assert.Empty(t, m.AssignedPilots)

	cleared, err := next.WithPilotAssignment("Arjun", "")
	require.NoError(t, err)
	assert.Empty(t, cleared.PilotMissions("Arjun"))
	for _, m := range cleared.Missions() {
		assert.NotContains(t, m.AssignedPilots, "Arjun")
	}
}

func TestWithDroneAssignmentAndStatus(t *testing.T) {
	r := fixture(t)

	next, err := r.WithDroneAssignment("D001", "PRJ001")
	require.NoError(t, err)
	cur, ok := next.DroneAssignment("D001")
	require.True(t, ok)
	assert.Equal(t, "PRJ001", cur)

	next, err = next.WithDroneStatus("D001", model.DroneDeployed)
	require.NoError(t, err)
	d, _ := next.Drone("D001")
	assert.Equal(t, model.DroneDeployed, d.Status)

	old, _ := r.Drone("D001")
	assert.Equal(t, model.DroneAvailable, old.Status)
}

func TestMutationsRejectUnknown(t *testing.T) {
	r := fixture(t)

	_, err := r.WithPilotStatus("Ghost", model.PilotAvailable)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = r.WithPilotAssignment("Arjun", "PRJ999")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = r.WithDroneAssignment("D999", "PRJ001")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = r.WithDroneStatus("D999", model.DroneGrounded)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
