package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/skyops/core/model"
)

func TestMissingItemsCaseInsensitive(t *testing.T) {
	missing := MissingItems([]string{"Mapping", "Survey"}, []string{"survey", "mapping", "Thermal"})
	assert.Empty(t, missing)

	missing = MissingItems([]string{"Mapping", "Survey"}, []string{"mapping", "thermal"})
	assert.Equal(t, []string{"Survey"}, missing)

	missing = MissingItems([]string{"Night Ops", "night ops"}, nil)
	assert.Equal(t, []string{"Night Ops"}, missing)

	assert.Nil(t, MissingItems(nil, []string{"x"}))
}

func TestWeatherCompatibility(t *testing.T) {
	table := DefaultWeatherTable()
	rating := model.NormalizeWeatherRating("IP43 (Rain)")
	assert.True(t, table.Compatible(rating, model.WeatherRainy))
	assert.False(t, table.Compatible(rating, model.WeatherStormy))
	assert.False(t, table.Compatible(model.RatingStandard, model.WeatherRainy))
	assert.True(t, table.Compatible(model.RatingStandard, model.WeatherClear))
	// unknown weather falls back to Standard only
	assert.True(t, table.Compatible(model.RatingStandard, model.Weather("Hail")))
	assert.False(t, table.Compatible(model.RatingIP67, model.Weather("Hail")))
}

func TestParseWeatherTable(t *testing.T) {
	table := ParseWeatherTable(map[string][]string{
		"Rainy": {"IP43 (Rain)"},
		"Sunny": {"Standard", "None (Clear Sky Only)"},
	})
	assert.Equal(t, []model.WeatherRating{model.RatingIP43}, table.Allowed(model.WeatherRainy))
	assert.True(t, table.Compatible(model.RatingStandard, model.WeatherClear))
}

func TestPilotQualified(t *testing.T) {
	m := model.Mission{RequiredSkills: []string{"Survey"}, RequiredCertifications: []string{"DGCA"}}
	assert.True(t, PilotQualified(model.Pilot{Skills: []string{"survey"}, Certifications: []string{"dgca"}}, m))
	assert.False(t, PilotQualified(model.Pilot{Skills: []string{"survey"}}, m))
}
