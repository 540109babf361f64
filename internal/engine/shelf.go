package engine

import (
	"context"

	"github.com/piwi3910/sheetnest/internal/model"
)

// shelfState tracks the row being filled on one sheet.
type shelfState struct {
	cursorX      float64 // next placement origin in the current row
	cursorY      float64 // top of the current row
	rowMaxHeight float64 // tallest kerfed height placed in the current row
}

// candidate is one possible placement of a part.
type candidate struct {
	x, y    float64
	w, h    float64
	rotated bool
}

// candidates lists the placements to try, in priority order: as defined at
// the cursor, as defined at a new row, rotated at the cursor, rotated at a
// new row. Rotation of a square part is skipped since it would repeat the
// as-defined attempts.
func (s shelfState) candidates(inst model.PartInstance) []candidate {
	orient := LegalOrientations(inst)
	w, h := inst.OriginalWidth, inst.OriginalHeight
	rowY := s.cursorY + s.rowMaxHeight

	out := make([]candidate, 0, 4)
	if orient.AsDefined {
		out = append(out,
			candidate{x: s.cursorX, y: s.cursorY, w: w, h: h},
			candidate{x: 0, y: rowY, w: w, h: h},
		)
	}
	if orient.Rotated && !(inst.Square() && orient.AsDefined) {
		out = append(out,
			candidate{x: s.cursorX, y: s.cursorY, w: h, h: w, rotated: !inst.Square()},
			candidate{x: 0, y: rowY, w: h, h: w, rotated: !inst.Square()},
		)
	}
	return out
}

func (c candidate) fits(sheet model.SheetSize, kerf float64) bool {
	return c.x+c.w+kerf <= sheet.Width &&
		c.y+c.h+kerf <= sheet.Height
}

// place advances the shelf state past a placed candidate.
func (s *shelfState) place(c candidate, kerf float64) {
	if c.y > s.cursorY {
		s.cursorY = c.y
		s.cursorX = c.w + kerf
		s.rowMaxHeight = c.h + kerf
		return
	}
	s.cursorX += c.w + kerf
	if c.h+kerf > s.rowMaxHeight {
		s.rowMaxHeight = c.h + kerf
	}
}

// packSheet makes one pass over the remaining instances on a fresh sheet.
// It returns the parts placed and the instances left for the next sheet.
func packSheet(remaining []model.PartInstance, sheet model.SheetSize, kerf float64) ([]model.PlacedPart, []model.PartInstance) {
	var state shelfState
	var placed []model.PlacedPart
	var rest []model.PartInstance

	for _, inst := range remaining {
		ok := false
		for _, c := range state.candidates(inst) {
			if !c.fits(sheet, kerf) {
				continue
			}
			inst.Packed = true
			placed = append(placed, model.PlacedPart{
				PartInstance: inst,
				X:            c.x,
				Y:            c.y,
				PlacedWidth:  c.w,
				PlacedHeight: c.h,
				Rotated:      c.rotated,
			})
			state.place(c, kerf)
			ok = true
			break
		}
		if !ok {
			rest = append(rest, inst)
		}
	}
	return placed, rest
}

// materialOutcome is the independent packing result of one material group.
type materialOutcome struct {
	material string
	sheet    model.SheetSize
	sheets   []model.SheetLayout
	packed   int
	unpacked []model.PartInstance
	halt     model.HaltReason
}

// packMaterial packs one material group sheet by sheet until every
// instance is placed, a fresh sheet takes nothing, or the sheet cap is hit.
func packMaterial(ctx context.Context, group MaterialGroup, sheet model.SheetSize, settings model.NestSettings) (materialOutcome, error) {
	out := materialOutcome{material: group.Material, sheet: sheet}

	remaining := make([]model.PartInstance, len(group.Instances))
	copy(remaining, group.Instances)
	SortForShelf(remaining)

	opened := 0
	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return materialOutcome{}, err
		}
		if opened >= settings.MaxSheetsPerMaterial {
			out.halt = model.HaltSheetCap
			break
		}
		opened++

		placed, rest := packSheet(remaining, sheet, settings.Kerf)
		if len(placed) == 0 {
			out.halt = model.HaltNoProgress
			break
		}
		out.sheets = append(out.sheets, closeSheet(group.Material, sheet, placed, settings.Kerf))
		out.packed += len(placed)
		remaining = rest
	}

	out.unpacked = remaining
	return out, nil
}
