// Package rules holds the pure predicates shared by the detector, the
// matcher and the availability summarizer.
package rules

import (
	"strings"

	"github.com/kilianp07/skyops/core/model"
)

// WeatherTable maps an expected weather to the drone ratings allowed to fly
// in it.
type WeatherTable map[model.Weather][]model.WeatherRating

// fallbackRatings applies to weather labels missing from the table.
var fallbackRatings = []model.WeatherRating{model.RatingStandard}

// DefaultWeatherTable returns the built-in compatibility table.
func DefaultWeatherTable() WeatherTable {
	all := []model.WeatherRating{model.RatingStandard, model.RatingIP43, model.RatingIP67}
	return WeatherTable{
		model.WeatherClear:  all,
		model.WeatherCloudy: all,
		model.WeatherFoggy:  all,
		model.WeatherRainy:  {model.RatingIP43, model.RatingIP67},
		model.WeatherStormy: {model.RatingIP67},
	}
}

// ParseWeatherTable builds a table from configuration where keys are weather
// labels and values free-form rating strings.
func ParseWeatherTable(raw map[string][]string) WeatherTable {
	t := make(WeatherTable, len(raw))
	for w, ratings := range raw {
		key := model.ParseWeather(w)
		for _, r := range ratings {
			t[key] = append(t[key], model.NormalizeWeatherRating(r))
		}
	}
	return t
}

// Allowed returns the ratings compatible with w.
func (t WeatherTable) Allowed(w model.Weather) []model.WeatherRating {
	if r, ok := t[w]; ok {
		return r
	}
	return fallbackRatings
}

// Compatible reports whether a drone with the given rating may fly in w.
func (t WeatherTable) Compatible(rating model.WeatherRating, w model.Weather) bool {
	for _, r := range t.Allowed(w) {
		if r == rating {
			return true
		}
	}
	return false
}

// MissingItems returns the entries of required absent from available,
// comparing case-insensitively. Results keep the spelling and order of
// required and are deduplicated.
func MissingItems(required, available []string) []string {
	if len(required) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(available))
	for _, a := range available {
		have[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	var missing []string
	seen := make(map[string]struct{}, len(required))
	for _, r := range required {
		k := strings.ToLower(strings.TrimSpace(r))
		if _, ok := have[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		missing = append(missing, r)
	}
	return missing
}

// ContainsFold reports whether list holds item ignoring case.
func ContainsFold(list []string, item string) bool {
	item = strings.TrimSpace(item)
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), item) {
			return true
		}
	}
	return false
}

// SameLocation compares two locations exactly, as the source data does.
func SameLocation(a, b string) bool {
	return a == b
}

// PilotQualified reports whether a pilot covers every skill and
// certification the mission requires.
func PilotQualified(p model.Pilot, m model.Mission) bool {
	return len(MissingItems(m.RequiredSkills, p.Skills)) == 0 &&
		len(MissingItems(m.RequiredCertifications, p.Certifications)) == 0
}
