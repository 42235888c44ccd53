package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/rules"
)

// WeatherConfig overrides rows of the weather compatibility table. Keys are
// weather labels, values the drone ratings allowed in that weather.
type WeatherConfig map[string][]string

// Table merges the overrides into the default table.
func (c WeatherConfig) Table() rules.WeatherTable {
	t := rules.DefaultWeatherTable()
	for w, ratings := range rules.ParseWeatherTable(c) {
		t[w] = ratings
	}
	return t
}

// Validate rejects ratings that would silently normalize to Standard.
func (c WeatherConfig) Validate() error {
	for w, ratings := range c {
		if len(ratings) == 0 {
			return fmt.Errorf("%s: no ratings listed", w)
		}
		for _, r := range ratings {
			if model.NormalizeWeatherRating(r) == model.RatingStandard && !isStandard(r) {
				return fmt.Errorf("%s: unknown rating %q", w, r)
			}
		}
	}
	return nil
}

func isStandard(r string) bool {
	r = strings.ToLower(strings.TrimSpace(r))
	return r == "standard" || strings.HasPrefix(r, "none")
}
