package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateLayouts(t *testing.T) {
	want := NewDate(2026, 2, 7)
	for _, in := range []string{"2026-02-07", "02/07/2026", " 2026-02-07 "} {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, d.Equal(want), "%s parsed as %s", in, d)
	}
	// day-first is only tried once month-first fails
	d, err := ParseDate("25/02/2026")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-25", d.String())

	d, err = ParseDate("-")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("tomorrow")
	assert.Error(t, err)
}

func TestOverlapsClosedRanges(t *testing.T) {
	a, b := MustDate("2026-02-07"), MustDate("2026-02-09")
	cases := []struct {
		name   string
		s, e   string
		expect bool
	}{
		{"inside", "2026-02-08", "2026-02-08", true},
		{"touching end", "2026-02-09", "2026-02-12", true},
		{"touching start", "2026-02-01", "2026-02-07", true},
		{"before", "2026-02-01", "2026-02-06", false},
		{"after", "2026-02-10", "2026-02-11", false},
	}
	for _, tc := range cases {
		got := Overlaps(a, b, MustDate(tc.s), MustDate(tc.e))
		if got != tc.expect {
			t.Errorf("%s: expected %v got %v", tc.name, tc.expect, got)
		}
	}
}

func TestNormalizeWeatherRating(t *testing.T) {
	assert.Equal(t, RatingIP43, NormalizeWeatherRating("IP43 (Rain)"))
	assert.Equal(t, RatingIP67, NormalizeWeatherRating("IP67 (Heavy Rain)"))
	assert.Equal(t, RatingIP67, NormalizeWeatherRating("IP67 (Dust)"))
	assert.Equal(t, RatingStandard, NormalizeWeatherRating("None (Clear Sky Only)"))
	assert.Equal(t, RatingStandard, NormalizeWeatherRating("IPX9"))
	assert.Equal(t, RatingStandard, NormalizeWeatherRating(""))
}

func TestParseStatusesDefaultConservatively(t *testing.T) {
	s, ok := ParsePilotStatus("Assigned")
	assert.True(t, ok)
	assert.Equal(t, PilotOnMission, s)

	s, ok = ParsePilotStatus("on_leave")
	assert.True(t, ok)
	assert.Equal(t, PilotOnLeave, s)

	s, ok = ParsePilotStatus("sabbatical")
	assert.False(t, ok)
	assert.Equal(t, PilotUnavailable, s)

	ds, ok := ParseDroneStatus("broken")
	assert.False(t, ok)
	assert.Equal(t, DroneGrounded, ds)

	ms, ok := ParseMissionStatus("")
	assert.True(t, ok)
	assert.Equal(t, MissionPlanned, ms)
}

func TestValidation(t *testing.T) {
	m := Mission{ID: "PRJ001", Start: MustDate("2026-02-09"), End: MustDate("2026-02-07"), Budget: 10}
	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "end", ve.Field)

	m = Mission{ID: "PRJ001", Start: MustDate("2026-02-07"), End: MustDate("2026-02-09"), Budget: 0}
	assert.Error(t, m.Validate())

	d := Drone{ID: "D1", MaxFlightMinutes: 30, BatteryHealth: 101}
	assert.Error(t, d.Validate())
	d.BatteryHealth = 100
	assert.NoError(t, d.Validate())

	p := Pilot{Name: "Arjun", HourlyRate: 0}
	assert.Error(t, p.Validate())
	p.HourlyRate = 150
	assert.NoError(t, p.Validate())
}

func TestValidationRejectsNonFiniteAmounts(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		m := Mission{ID: "PRJ001", Start: MustDate("2026-02-07"), End: MustDate("2026-02-09"), Budget: v}
		assert.ErrorIs(t, m.Validate(), ErrValidation, "budget %v", v)
		p := Pilot{Name: "Arjun", HourlyRate: v}
		assert.ErrorIs(t, p.Validate(), ErrValidation, "rate %v", v)
	}
}

func TestMissionDurationInclusive(t *testing.T) {
	m := Mission{Start: MustDate("2026-02-07"), End: MustDate("2026-02-09")}
	assert.Equal(t, 3, m.DurationDays())
	m.End = m.Start
	assert.Equal(t, 1, m.DurationDays())
}

func TestPilotLeaveWindow(t *testing.T) {
	p := Pilot{Name: "Arjun", Status: PilotOnLeave}
	assert.False(t, p.OnLeaveDuring(MustDate("2026-02-07"), MustDate("2026-02-09")))
	p.LeaveStart, p.LeaveEnd = MustDate("2026-02-08"), MustDate("2026-02-08")
	assert.True(t, p.OnLeaveDuring(MustDate("2026-02-07"), MustDate("2026-02-09")))
}
