package model

import (
	"math"
	"testing"
)

func TestEstimateMaterials(t *testing.T) {
	oak := NewPartSpec("Door", 497, 597, 4)
	oak.Material = "Oak"
	specs := []PartSpec{
		NewPartSpec("Side", 997, 497, 2),
		oak,
	}
	sizes := SheetSizeConfig{"Oak": {Width: 1000, Height: 1000}}
	settings := DefaultSettings()

	est := EstimateMaterials(specs, sizes, settings)
	if len(est) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(est))
	}

	def := est[0]
	if def.Material != DefaultMaterial || def.Instances != 2 {
		t.Errorf("unexpected default estimate %+v", def)
	}
	if def.Sheet != DefaultSheetSize {
		t.Errorf("expected default sheet, got %v", def.Sheet)
	}
	if def.TotalPartArea != 2*1000*500 {
		t.Errorf("expected kerfed area 1000000, got %f", def.TotalPartArea)
	}
	if def.SheetsNeededMin != 1 {
		t.Errorf("expected 1 sheet, got %d", def.SheetsNeededMin)
	}

	o := est[1]
	if math.Abs(o.SheetsNeededExact-1.2) > 1e-9 {
		t.Errorf("expected 1.2 sheets, got %f", o.SheetsNeededExact)
	}
	if o.SheetsNeededMin != 2 {
		t.Errorf("expected 2 sheets, got %d", o.SheetsNeededMin)
	}
}

func TestEstimateMaterialsEmpty(t *testing.T) {
	if est := EstimateMaterials(nil, nil, DefaultSettings()); len(est) != 0 {
		t.Errorf("expected no estimates, got %d", len(est))
	}
}
