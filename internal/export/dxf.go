package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/sheetnest/internal/model"
)

// DXF layer names.
const (
	LayerSheets   = "SHEETS"
	LayerParts    = "PARTS"
	LayerLabels   = "LABELS"
	LayerRemnants = "REMNANTS"
)

// sheetGap separates consecutive sheets along X in the drawing (mm).
const sheetGap = 200.0

// ExportDXF writes every sheet of the result into one drawing, side by side
// along X in sheet order. Coordinates are in mm with Y pointing up, so the
// top-left layout origin maps to the top-left corner of each sheet outline.
func ExportDXF(path string, result model.NestResult) error {
	if err := requireSheets(result); err != nil {
		return err
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerSheets, color.White},
		{LayerRemnants, color.Green},
		{LayerParts, color.Cyan},
		{LayerLabels, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("adding layer %s: %w", l.name, err)
		}
	}

	offsetX := 0.0
	for _, sheet := range result.Sheets {
		if err := drawSheetDXF(d, sheet, offsetX); err != nil {
			return fmt.Errorf("sheet %d: %w", sheet.ID, err)
		}
		offsetX += sheet.SheetWidth + sheetGap
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("saving DXF: %w", err)
	}
	return nil
}

func drawSheetDXF(d *drawing.Drawing, sheet model.SheetLayout, ox float64) error {
	// flip converts a top-left layout rectangle into DXF corner coordinates.
	flip := func(x, y, w, h float64) (x0, y0, x1, y1 float64) {
		return ox + x, sheet.SheetHeight - y - h, ox + x + w, sheet.SheetHeight - y
	}

	if err := d.ChangeLayer(LayerSheets); err != nil {
		return err
	}
	sx0, sy0, sx1, sy1 := flip(0, 0, sheet.SheetWidth, sheet.SheetHeight)
	if err := rectDXF(d, sx0, sy0, sx1, sy1); err != nil {
		return err
	}
	textH := textHeight(sheet.SheetWidth, sheet.SheetHeight)
	title := fmt.Sprintf("Sheet %d %s %.0fx%.0f %.1f%%", sheet.ID, sheet.Material, sheet.SheetWidth, sheet.SheetHeight, sheet.EfficiencyPercent)
	if _, err := d.Text(title, ox, sheet.SheetHeight+textH, 0, textH); err != nil {
		return err
	}

	if err := d.ChangeLayer(LayerRemnants); err != nil {
		return err
	}
	for _, r := range model.DetectRemnants(sheet) {
		rx0, ry0, rx1, ry1 := flip(r.X, r.Y, r.Width, r.Height)
		if err := rectDXF(d, rx0, ry0, rx1, ry1); err != nil {
			return err
		}
	}

	for _, p := range sheet.Parts {
		if err := d.ChangeLayer(LayerParts); err != nil {
			return err
		}
		x0, y0, x1, y1 := flip(p.X, p.Y, p.PlacedWidth, p.PlacedHeight)
		if err := rectDXF(d, x0, y0, x1, y1); err != nil {
			return err
		}

		h := textHeight(p.PlacedWidth, p.PlacedHeight)
		if err := d.ChangeLayer(LayerLabels); err != nil {
			return err
		}
		if _, err := d.Text(p.Name, x0+h/2, y1-1.5*h, 0, h); err != nil {
			return err
		}
	}
	return nil
}

func rectDXF(d *drawing.Drawing, x0, y0, x1, y1 float64) error {
	_, err := d.LwPolyline(true,
		[]float64{x0, y0},
		[]float64{x1, y0},
		[]float64{x1, y1},
		[]float64{x0, y1},
	)
	return err
}

// textHeight scales annotation text to the box it labels.
func textHeight(w, h float64) float64 {
	m := w
	if h < m {
		m = h
	}
	switch {
	case m > 400:
		return 30
	case m > 100:
		return m / 12
	default:
		return m / 8
	}
}
