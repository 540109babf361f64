package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sheetnest/internal/model"
)

func inst(id string, w, h float64, g model.Grain) model.PartInstance {
	return model.PartInstance{InstanceID: id, Name: id, OriginalWidth: w, OriginalHeight: h, Material: model.DefaultMaterial, Grain: g}
}

func TestLegalOrientations(t *testing.T) {
	tests := []struct {
		name string
		in   model.PartInstance
		want Orientations
	}{
		{"none", inst("a", 200, 100, model.GrainNone), Orientations{AsDefined: true, Rotated: true}},
		{"with", inst("a", 200, 100, model.GrainWith), Orientations{AsDefined: true}},
		{"reverse", inst("a", 200, 100, model.GrainReverse), Orientations{Rotated: true}},
		{"with square", inst("a", 100, 100, model.GrainWith), Orientations{AsDefined: true, Rotated: true}},
		{"reverse square", inst("a", 100, 100, model.GrainReverse), Orientations{AsDefined: true, Rotated: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LegalOrientations(tt.in))
		})
	}
}

func TestSortForShelf(t *testing.T) {
	in := []model.PartInstance{
		inst("low", 900, 100, model.GrainNone),
		inst("rev", 700, 200, model.GrainReverse), // effective 200x700
		inst("tall", 100, 500, model.GrainNone),
		inst("wide", 300, 500, model.GrainNone),
		inst("tall2", 100, 500, model.GrainNone),
	}
	SortForShelf(in)

	ids := make([]string, len(in))
	for i, p := range in {
		ids[i] = p.InstanceID
	}
	assert.Equal(t, []string{"rev", "wide", "tall", "tall2", "low"}, ids)
}

func TestExpand(t *testing.T) {
	a := model.NewPartSpec("A", 100, 50, 2)
	a.Material = "MDF"
	b := model.NewPartSpec("A", 10, 10, 1)

	got, err := Expand([]model.PartSpec{a, b})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A#1.1", got[0].InstanceID)
	assert.Equal(t, "A#1.2", got[1].InstanceID)
	assert.Equal(t, "A#2.1", got[2].InstanceID)
	assert.Equal(t, "MDF", got[0].Material)
	assert.Equal(t, model.DefaultMaterial, got[2].Material)
	for _, p := range got {
		assert.False(t, p.Packed)
	}
}

func TestValidateSpecs_ReportsEveryProblem(t *testing.T) {
	specs := []model.PartSpec{
		model.NewPartSpec("ok", 10, 10, 1),
		{Name: "", Width: -1, Height: 10, Quantity: 0},
		{Name: "g", Width: 10, Height: 10, Quantity: 1, Grain: model.Grain(9)},
	}
	err := ValidateSpecs(specs)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Issues, 2)
	assert.Equal(t, 1, ve.Issues[0].Index)
	assert.Len(t, ve.Issues[0].Reasons, 3)
	assert.Equal(t, 2, ve.Issues[1].Index)
	assert.Contains(t, err.Error(), "2 problems")
}

func TestValidateSpecs_QuantityLimit(t *testing.T) {
	assert.NoError(t, ValidateSpecs([]model.PartSpec{model.NewPartSpec("A", 10, 10, MaxInstances)}))

	err := ValidateSpecs([]model.PartSpec{model.NewPartSpec("A", 10, 10, MaxInstances+1)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, ve.Issues[0].Index)
}

func TestPackSheet_RespectsExactEdge(t *testing.T) {
	sheet := model.SheetSize{Width: 1000, Height: 500}

	placed, rest := packSheet([]model.PartInstance{inst("over", 997.0000005, 100, model.GrainWith)}, sheet, 3)
	assert.Empty(t, placed)
	assert.Len(t, rest, 1)

	placed, rest = packSheet([]model.PartInstance{inst("exact", 997, 100, model.GrainWith)}, sheet, 3)
	require.Len(t, placed, 1)
	assert.Empty(t, rest)
	assert.Equal(t, 1000.0, placed[0].X+placed[0].PlacedWidth+3)
}

func TestGroupByMaterial_FirstAppearanceOrder(t *testing.T) {
	in := []model.PartInstance{
		{InstanceID: "1", Material: "Oak"},
		{InstanceID: "2", Material: ""},
		{InstanceID: "3", Material: "Oak"},
		{InstanceID: "4", Material: "MDF"},
	}
	groups := GroupByMaterial(in)

	require.Len(t, groups, 3)
	assert.Equal(t, "Oak", groups[0].Material)
	assert.Len(t, groups[0].Instances, 2)
	assert.Equal(t, model.DefaultMaterial, groups[1].Material)
	assert.Equal(t, "MDF", groups[2].Material)
}

func TestPackSheet_SkipsMisfitAndContinues(t *testing.T) {
	sheet := model.SheetSize{Width: 100, Height: 100}
	remaining := []model.PartInstance{
		inst("a", 60, 60, model.GrainNone),
		inst("b", 60, 60, model.GrainNone),
		inst("c", 30, 30, model.GrainNone),
	}

	placed, rest := packSheet(remaining, sheet, 0)

	require.Len(t, placed, 2)
	assert.Equal(t, "a", placed[0].InstanceID)
	assert.Equal(t, "c", placed[1].InstanceID)
	assert.Equal(t, 60.0, placed[1].X)
	require.Len(t, rest, 1)
	assert.Equal(t, "b", rest[0].InstanceID)
}

func TestPackMaterial_CapAndSheetCount(t *testing.T) {
	settings := testSettings(0)
	settings.MaxSheetsPerMaterial = 2
	group := MaterialGroup{Material: "X", Instances: []model.PartInstance{
		inst("a", 10, 10, model.GrainNone),
		inst("b", 10, 10, model.GrainNone),
		inst("c", 10, 10, model.GrainNone),
	}}

	out, err := packMaterial(context.Background(), group, model.SheetSize{Width: 10, Height: 10}, settings)
	require.NoError(t, err)
	assert.Len(t, out.sheets, 2)
	assert.Equal(t, 2, out.packed)
	assert.Len(t, out.unpacked, 1)
	assert.Equal(t, model.HaltSheetCap, out.halt)
	assert.False(t, group.Instances[0].Packed, "group input must not be mutated")
}

func TestCloseSheet_BoundingBoxAndEfficiency(t *testing.T) {
	parts := []model.PlacedPart{
		{PartInstance: inst("a", 100, 50, model.GrainNone), PlacedWidth: 100, PlacedHeight: 50},
		{PartInstance: inst("b", 40, 80, model.GrainNone), X: 102, PlacedWidth: 80, PlacedHeight: 40, Rotated: true},
	}
	sl := closeSheet("MDF", model.SheetSize{Width: 200, Height: 100}, parts, 2)

	assert.Equal(t, 184.0, sl.UsedWidth)
	assert.Equal(t, 52.0, sl.UsedHeight)
	// (102*52 + 42*82) / 20000
	assert.Equal(t, 43.7, sl.EfficiencyPercent)
}
