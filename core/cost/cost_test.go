package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/registry"
)

func build(t *testing.T, pilots []model.Pilot, missions ...model.Mission) *registry.Registry {
	t.Helper()
	r, err := registry.Build(pilots, nil, missions)
	require.NoError(t, err)
	return r
}

func mission(id string, budget float64, pilots ...string) model.Mission {
	return model.Mission{
		ID:             id,
		Location:       "Bangalore",
		Start:          model.MustDate("2026-02-07"),
		End:            model.MustDate("2026-02-09"),
		Budget:         budget,
		AssignedPilots: pilots,
	}
}

func TestEstimateThreeDays(t *testing.T) {
	reg := build(t,
		[]model.Pilot{{Name: "Neha", HourlyRate: 200}},
		mission("PRJ002", 5000, "Neha"),
	)
	b, err := Estimate(reg, "PRJ002")
	require.NoError(t, err)

	assert.Equal(t, 3, b.DurationDays)
	require.Len(t, b.Pilots, 1)
	assert.Equal(t, 24.0, b.Pilots[0].Hours)
	assert.Equal(t, 4800.0, b.Pilots[0].Cost)
	assert.Equal(t, 4800.0, b.Total)
	assert.Zero(t, b.DronesTotal)
	assert.True(t, b.WithinBudget)
	assert.Zero(t, b.Overrun())
}

func TestEstimateScenarioArjun(t *testing.T) {
	reg := build(t,
		[]model.Pilot{{Name: "Arjun", Skills: []string{"Survey"}, HourlyRate: 150, Status: model.PilotAvailable}},
		mission("PRJ001", 5000, "Arjun"),
	)
	b, err := Estimate(reg, "PRJ001")
	require.NoError(t, err)
	assert.Equal(t, 3600.0, b.Total)
	assert.True(t, b.WithinBudget)
}

func TestEstimateOverrunAndUnknownPilot(t *testing.T) {
	reg := build(t,
		[]model.Pilot{{Name: "Neha", HourlyRate: 200}, {Name: "Arjun", HourlyRate: 150}},
		mission("PRJ003", 4000, "Neha", "Arjun", "Ghost"),
	)
	b, err := Estimate(reg, "PRJ003")
	require.NoError(t, err)

	assert.Equal(t, 8400.0, b.Total)
	assert.False(t, b.WithinBudget)
	assert.Equal(t, 4400.0, b.Overrun())
	assert.False(t, b.Pilots[0].WithinBudget)
	assert.True(t, b.Pilots[1].WithinBudget)
	assert.Len(t, b.Warnings, 1)
}

func TestEstimateNoPilots(t *testing.T) {
	reg := build(t, nil, mission("PRJ004", 100))
	b, err := Estimate(reg, "PRJ004")
	require.NoError(t, err)
	assert.Empty(t, b.Pilots)
	assert.Zero(t, b.Total)
	assert.True(t, b.WithinBudget)
}

func TestEstimateUnknownMission(t *testing.T) {
	reg := build(t, nil)
	_, err := Estimate(reg, "NOPE")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestHypothetical(t *testing.T) {
	reg := build(t,
		[]model.Pilot{{Name: "Neha", HourlyRate: 200}, {Name: "Arjun", HourlyRate: 150}},
		mission("PRJ001", 8000, "Arjun"),
	)

	pr, err := Hypothetical(reg, "PRJ001", "Neha")
	require.NoError(t, err)
	assert.False(t, pr.AlreadyAssigned)
	assert.Equal(t, 3600.0, pr.CurrentTotal)
	assert.Equal(t, 8400.0, pr.ProjectedTotal)
	assert.Equal(t, 400.0, pr.Overrun)
	assert.False(t, pr.WithinBudget)

	pr, err = Hypothetical(reg, "PRJ001", "Arjun")
	require.NoError(t, err)
	assert.True(t, pr.AlreadyAssigned)
	assert.Equal(t, 3600.0, pr.ProjectedTotal)
	assert.Equal(t, 4400.0, pr.Remaining)

	_, err = Hypothetical(reg, "PRJ001", "Ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
