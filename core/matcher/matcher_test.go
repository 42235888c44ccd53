package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/registry"
)

func fleet(t *testing.T) *registry.Registry {
	t.Helper()
	pilots := []model.Pilot{
		{Name: "Arjun", Skills: []string{"survey"}, Certifications: []string{"dgca"}, Location: "Mumbai", Status: model.PilotAvailable, HourlyRate: 150},
		{Name: "Neha", Skills: []string{"Survey", "Mapping"}, Certifications: []string{"DGCA"}, Location: "Bangalore", Status: model.PilotOnMission, HourlyRate: 200},
		{Name: "Rohit", Skills: []string{"Survey"}, Location: "Bangalore", Status: model.PilotAvailable, HourlyRate: 120},
		{Name: "Sneha", Skills: []string{"Survey"}, Certifications: []string{"DGCA"}, Location: "Bangalore", Status: model.PilotOnLeave,
			LeaveStart: model.MustDate("2026-02-01"), LeaveEnd: model.MustDate("2026-02-05"), HourlyRate: 180},
		{Name: "Kiran", Skills: []string{"Survey"}, Certifications: []string{"DGCA"}, Location: "Bangalore", Status: model.PilotAvailable, HourlyRate: 100},
	}
	drones := []model.Drone{
		{ID: "D1", Capabilities: []string{"LiDAR"}, WeatherRating: model.RatingStandard, Status: model.DroneAvailable, Location: "Bangalore"},
		{ID: "D2", Capabilities: []string{"RGB"}, WeatherRating: model.RatingIP43, Status: model.DroneAvailable, Location: "Mumbai"},
		{ID: "D3", Capabilities: []string{"lidar", "RGB"}, WeatherRating: model.RatingIP67, Status: model.DroneDeployed, Location: "Bangalore",
			MaintenanceDue: model.MustDate("2026-01-01")},
		{ID: "D4", Capabilities: []string{"LiDAR"}, WeatherRating: model.RatingIP67, Status: model.DroneMaintenance, Location: "Bangalore"},
		{ID: "D5", Capabilities: []string{"LiDAR"}, WeatherRating: model.RatingIP67, Status: model.DroneAvailable, Location: "Bangalore"},
	}
	r, err := registry.Build(pilots, drones, nil)
	require.NoError(t, err)
	return r
}

func mission() model.Mission {
	return model.Mission{
		ID:                     "PRJ001",
		Location:               "Bangalore",
		RequiredSkills:         []string{"Survey"},
		RequiredCertifications: []string{"DGCA"},
		Start:                  model.MustDate("2026-02-07"),
		End:                    model.MustDate("2026-02-09"),
		Budget:                 5000,
		DroneRequirements:      []string{"LiDAR"},
		ExpectedWeather:        model.WeatherRainy,
	}
}

func pilotNames(ms []PilotMatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Pilot.Name
	}
	return out
}

func TestFindAvailablePilots(t *testing.T) {
	mt := New(nil)
	reg := fleet(t)

	got := mt.FindAvailablePilots(reg, mission(), false)
	assert.Equal(t, []string{"Arjun", "Neha", "Kiran"}, pilotNames(got))
	for _, m := range got {
		assert.Empty(t, m.Missing)
	}

	got = mt.FindAvailablePilots(reg, mission(), true)
	assert.Equal(t, []string{"Neha", "Kiran", "Arjun"}, pilotNames(got))
	assert.Equal(t, []string{"location (Mumbai vs Bangalore)"}, got[2].Missing)
	assert.Equal(t, []string{"Neha", "Kiran"}, pilotNames(FullyQualifiedPilots(got)))
}

func TestFindCompatibleDrones(t *testing.T) {
	mt := New(nil)
	reg := fleet(t)

	got := mt.FindCompatibleDrones(reg, mission(), true)
	ids := make([]string, len(got))
	for i, m := range got {
		ids[i] = m.Drone.ID
	}
	// D1 is Standard in rain, D4 is in maintenance.
	assert.Equal(t, []string{"D5", "D3", "D2"}, ids)
	assert.Equal(t, []string{"maintenance due"}, got[1].Missing)
	assert.Equal(t, []string{"location (Mumbai vs Bangalore)", "capabilities: LiDAR"}, got[2].Missing)
	require.Len(t, FullyQualifiedDrones(got), 1)
}

func TestFilterPilots(t *testing.T) {
	reg := fleet(t)

	got := FilterPilots(reg, PilotQuery{Skill: "MAPPING"})
	require.Len(t, got, 1)
	assert.Equal(t, "Neha", got[0].Name)

	got = FilterPilots(reg, PilotQuery{Certification: "dgca", Location: "bangalore"})
	assert.Len(t, got, 3)

	got = FilterPilots(reg, PilotQuery{Status: "on leave"})
	require.Len(t, got, 1)
	assert.Equal(t, "Sneha", got[0].Name)
}

func TestFilterDrones(t *testing.T) {
	reg := fleet(t)

	got := FilterDrones(reg, DroneQuery{Capability: "lidar"})
	assert.Len(t, got, 4)

	got = FilterDrones(reg, DroneQuery{WeatherRating: "IP43 (Rain)"})
	require.Len(t, got, 1)
	assert.Equal(t, "D2", got[0].ID)
}

func TestPilotsAvailableOn(t *testing.T) {
	reg := fleet(t)

	names := func(ps []model.Pilot) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Name
		}
		return out
	}
	assert.Equal(t, []string{"Arjun", "Rohit", "Kiran"}, names(PilotsAvailableOn(reg, model.MustDate("2026-02-03"))))
	assert.Equal(t, []string{"Arjun", "Rohit", "Sneha", "Kiran"}, names(PilotsAvailableOn(reg, model.MustDate("2026-02-06"))))
}
