package model

import "math"

// MaterialEstimate is an area-based lower bound on the sheets a material needs.
type MaterialEstimate struct {
	Material          string    `json:"material"`
	Sheet             SheetSize `json:"sheet"`
	Instances         int       `json:"instances"`
	TotalPartArea     float64   `json:"total_part_area"`     // Kerfed part area (sq mm)
	SheetsNeededExact float64   `json:"sheets_needed_exact"` // Exact fractional number of sheets
	SheetsNeededMin   int       `json:"sheets_needed_min"`   // Ceiling of the exact count
}

// EstimateMaterials computes a per-material area estimate for a cut list.
// Materials appear in first-appearance order of the specs.
func EstimateMaterials(specs []PartSpec, sizes SheetSizeConfig, settings NestSettings) []MaterialEstimate {
	index := make(map[string]int)
	var estimates []MaterialEstimate

	for _, p := range specs {
		mat := p.MaterialKey()
		i, ok := index[mat]
		if !ok {
			i = len(estimates)
			index[mat] = i
			estimates = append(estimates, MaterialEstimate{
				Material: mat,
				Sheet:    sizes.Lookup(mat, settings.DefaultSheet),
			})
		}
		partW := p.Width + settings.Kerf
		partH := p.Height + settings.Kerf
		estimates[i].TotalPartArea += partW * partH * float64(p.Quantity)
		estimates[i].Instances += p.Quantity
	}

	for i := range estimates {
		area := estimates[i].Sheet.Area()
		if area <= 0 {
			continue
		}
		exact := estimates[i].TotalPartArea / area
		estimates[i].SheetsNeededExact = exact
		estimates[i].SheetsNeededMin = int(math.Ceil(exact))
	}
	return estimates
}
