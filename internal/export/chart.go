package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/piwi3910/sheetnest/internal/model"
)

// RenderEfficiencyChart writes an HTML page with a bar chart of the
// efficiency and reusable remnant share of every sheet.
func RenderEfficiencyChart(w io.Writer, result model.NestResult, settings model.NestSettings) error {
	if err := requireSheets(result); err != nil {
		return err
	}

	labels := make([]string, 0, len(result.Sheets))
	used := make([]opts.BarData, 0, len(result.Sheets))
	remnant := make([]opts.BarData, 0, len(result.Sheets))
	for _, s := range result.Sheets {
		labels = append(labels, fmt.Sprintf("#%d %s", s.ID, s.Material))
		used = append(used, opts.BarData{Value: s.EfficiencyPercent})

		share := 0.0
		if area := s.Area(); area > 0 {
			share = model.RoundTenth(100 * model.TotalRemnantArea(model.DetectRemnants(s)) / area)
		}
		remnant = append(remnant, opts.BarData{Value: share})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Sheet utilisation",
			Subtitle: fmt.Sprintf("%s, overall %.1f%%", result.Message, result.TotalEfficiency(settings.Kerf)),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "% of sheet", Min: 0, Max: 100}),
		charts.WithLegendOpts(opts.Legend{Right: "10%"}),
	)
	bar.SetXAxis(labels).
		AddSeries("Parts incl. kerf", used).
		AddSeries("Reusable remnant", remnant)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
