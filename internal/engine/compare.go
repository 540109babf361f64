package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/sheetnest/internal/model"
)

// ComparisonScenario defines a named set of settings and sheet sizes to compare.
type ComparisonScenario struct {
	Name       string                `json:"name"`
	Settings   model.NestSettings    `json:"settings"`
	SheetSizes model.SheetSizeConfig `json:"sheet_sizes"`
}

// ComparisonResult holds the nesting result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario `json:"scenario"`
	Result        model.NestResult   `json:"result"`
	SheetsUsed    int                `json:"sheets_used"`
	WastePercent  float64            `json:"waste_percent"`
	UnpackedCount int                `json:"unpacked_count"`
}

// CompareScenarios runs nesting for each scenario and returns the results
// in scenario order. Input errors abort the comparison since every scenario
// shares the same cut list.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, specs []model.PartSpec, opts ...Option) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		n := New(scenario.Settings, opts...)
		result, err := n.Nest(ctx, specs, scenario.SheetSizes)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		waste := 0.0
		if len(result.Sheets) > 0 {
			waste = model.RoundTenth(100.0 - result.TotalEfficiency(scenario.Settings.Kerf))
		}

		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Result:        result,
			SheetsUsed:    len(result.Sheets),
			WastePercent:  waste,
			UnpackedCount: result.TotalUnpacked,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates what-if alternatives around the current
// settings: thinner blades and sheets loaded the other way round.
func BuildDefaultScenarios(base model.NestSettings, sizes model.SheetSizeConfig) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:       "Current Settings",
			Settings:   base,
			SheetSizes: sizes,
		},
	}

	if base.Kerf > 1.0 {
		half := base
		half.Kerf = base.Kerf * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:       fmt.Sprintf("Kerf %.1fmm (half)", half.Kerf),
			Settings:   half,
			SheetSizes: sizes,
		})
	}

	if base.Kerf > 0 {
		none := base
		none.Kerf = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:       "No Kerf",
			Settings:   none,
			SheetSizes: sizes,
		})
	}

	transposed := base
	transposed.DefaultSheet = base.DefaultSheet.Transposed()
	tSizes := make(model.SheetSizeConfig, len(sizes))
	for mat, s := range sizes {
		tSizes[mat] = s.Transposed()
	}
	scenarios = append(scenarios, ComparisonScenario{
		Name:       "Sheets Transposed",
		Settings:   transposed,
		SheetSizes: tSizes,
	})

	return scenarios
}

// BestScenario returns the index of the result that places the most parts,
// breaking ties by fewer sheets and then lower waste. It returns -1 for an
// empty slice.
func BestScenario(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if best < 0 {
			best = i
			continue
		}
		b := results[best]
		switch {
		case r.UnpackedCount != b.UnpackedCount:
			if r.UnpackedCount < b.UnpackedCount {
				best = i
			}
		case r.SheetsUsed != b.SheetsUsed:
			if r.SheetsUsed < b.SheetsUsed {
				best = i
			}
		case r.WastePercent < b.WastePercent:
			best = i
		}
	}
	return best
}
