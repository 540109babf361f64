package engine

import (
	"fmt"

	"github.com/piwi3910/sheetnest/internal/model"
)

// closeSheet computes the used bounding box and efficiency of a finished sheet.
// The ID is assigned later by aggregate.
func closeSheet(material string, sheet model.SheetSize, parts []model.PlacedPart, kerf float64) model.SheetLayout {
	sl := model.SheetLayout{
		Material:    material,
		SheetWidth:  sheet.Width,
		SheetHeight: sheet.Height,
		Parts:       parts,
	}
	for _, p := range parts {
		if right := p.X + p.PlacedWidth + kerf; right > sl.UsedWidth {
			sl.UsedWidth = right
		}
		if bottom := p.Y + p.PlacedHeight + kerf; bottom > sl.UsedHeight {
			sl.UsedHeight = bottom
		}
	}
	if area := sl.Area(); area > 0 {
		sl.EfficiencyPercent = model.RoundTenth(100 * sl.PartsArea(kerf) / area)
	}
	return sl
}

// aggregate merges per-material outcomes in group order, numbers the sheets
// and computes the run totals.
func aggregate(outcomes []materialOutcome) model.NestResult {
	result := model.NestResult{
		Sheets:    []model.SheetLayout{},
		Unpacked:  []model.PartInstance{},
		Materials: make([]model.MaterialSummary, 0, len(outcomes)),
	}

	nextID := 1
	for _, o := range outcomes {
		for _, sl := range o.sheets {
			sl.ID = nextID
			nextID++
			result.Sheets = append(result.Sheets, sl)
		}
		result.Unpacked = append(result.Unpacked, o.unpacked...)

		result.Materials = append(result.Materials, model.MaterialSummary{
			Material:    o.material,
			SheetWidth:  o.sheet.Width,
			SheetHeight: o.sheet.Height,
			Instances:   o.packed + len(o.unpacked),
			Packed:      o.packed,
			Unpacked:    len(o.unpacked),
			Sheets:      len(o.sheets),
			Halt:        o.halt,
		})

		result.TotalPacked += o.packed
		result.TotalUnpacked += len(o.unpacked)
	}
	result.TotalInstances = result.TotalPacked + result.TotalUnpacked
	result.Success = result.TotalUnpacked == 0
	result.Message = summaryMessage(result)
	return result
}

func summaryMessage(r model.NestResult) string {
	if r.Success {
		return fmt.Sprintf("Packed all %d parts onto %d sheet(s)", r.TotalInstances, len(r.Sheets))
	}
	return fmt.Sprintf("Packed %d of %d parts onto %d sheet(s); %d could not be placed",
		r.TotalPacked, r.TotalInstances, len(r.Sheets), r.TotalUnpacked)
}
