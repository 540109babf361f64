package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sheetnest/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := testSettings(3)
	cfg := model.SheetSizeConfig{"MDF": {Width: 2000, Height: 1000}}

	scenarios := BuildDefaultScenarios(base, cfg)

	require.Len(t, scenarios, 4)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, 1.5, scenarios[1].Settings.Kerf)
	assert.Equal(t, 0.0, scenarios[2].Settings.Kerf)
	assert.Equal(t, "Sheets Transposed", scenarios[3].Name)
	assert.Equal(t, model.SheetSize{Width: 1000, Height: 2000}, scenarios[3].SheetSizes["MDF"])
	assert.Equal(t, base.DefaultSheet.Height, scenarios[3].Settings.DefaultSheet.Width)
	assert.Equal(t, 2000.0, cfg["MDF"].Width, "input sizes must not be modified")
}

func TestBuildDefaultScenarios_ZeroKerf(t *testing.T) {
	scenarios := BuildDefaultScenarios(testSettings(0), nil)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "Sheets Transposed", scenarios[1].Name)
}

func TestCompareScenarios(t *testing.T) {
	specs := []model.PartSpec{model.NewPartSpec("Sq", 600, 600, 2)}
	cfg := sizes(model.DefaultMaterial, 1000, 1203)

	results, err := CompareScenarios(context.Background(), BuildDefaultScenarios(testSettings(3), cfg), specs)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, 2, results[0].SheetsUsed, "kerf 3 needs 1206mm")
	assert.Equal(t, 1, results[1].SheetsUsed, "kerf 1.5 needs 1203mm")
	assert.Equal(t, 1, results[2].SheetsUsed)
	for _, r := range results {
		assert.Equal(t, 0, r.UnpackedCount)
		assert.GreaterOrEqual(t, r.WastePercent, 0.0)
	}
	// Kerf counts as used area, so the half kerf single sheet edges out no kerf.
	assert.Equal(t, 1, BestScenario(results))
}

func TestCompareScenarios_InputErrorAborts(t *testing.T) {
	_, err := CompareScenarios(context.Background(), BuildDefaultScenarios(testSettings(3), nil), nil)
	assert.ErrorIs(t, err, ErrNothingToPack)
}

func TestBestScenario_Empty(t *testing.T) {
	assert.Equal(t, -1, BestScenario(nil))
}
