package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/skyops/core/model"
)

// WriteChartHTML renders a standalone HTML page with one bar series per
// severity and one category per conflict type present.
func WriteChartHTML(w io.Writer, conflicts []model.Conflict) error {
	counts := make(map[model.ConflictType]map[model.Severity]int)
	for _, c := range conflicts {
		if counts[c.Type] == nil {
			counts[c.Type] = make(map[model.Severity]int)
		}
		counts[c.Type][c.Severity]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Conflicts by type",
			Subtitle: fmt.Sprintf("%d conflict(s)", len(conflicts)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Type"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	bar.SetXAxis(types)
	for _, sev := range model.Severities {
		data := make([]opts.BarData, len(types))
		for i, t := range types {
			data[i] = opts.BarData{Value: counts[model.ConflictType(t)][sev]}
		}
		bar.AddSeries(string(sev), data)
	}
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
