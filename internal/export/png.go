package export

import (
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/piwi3910/sheetnest/internal/model"
)

// DefaultPreviewSize is the length in pixels of the longer preview edge.
const DefaultPreviewSize = 800

const previewBorder = 10

// RenderSheetPNG draws a to-scale preview of one sheet. size is the length
// in pixels of the longer sheet edge; zero or less uses DefaultPreviewSize.
func RenderSheetPNG(w io.Writer, sheet model.SheetLayout, size int) error {
	if sheet.SheetWidth <= 0 || sheet.SheetHeight <= 0 {
		return fmt.Errorf("sheet %d has no size", sheet.ID)
	}
	if size <= 0 {
		size = DefaultPreviewSize
	}

	scale := float64(size) / math.Max(sheet.SheetWidth, sheet.SheetHeight)
	pxW := int(math.Round(sheet.SheetWidth*scale)) + 2*previewBorder
	pxH := int(math.Round(sheet.SheetHeight*scale)) + 2*previewBorder

	dc := gg.NewContext(pxW, pxH)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	rect := func(x, y, w, h float64, fill rgb, stroke bool) error {
		dc.DrawRectangle(previewBorder+x*scale, previewBorder+y*scale, w*scale, h*scale)
		dc.SetRGB(fill.floats())
		if !stroke {
			return dc.Fill()
		}
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetRGB(outline.floats())
		dc.SetLineWidth(1)
		return dc.Stroke()
	}

	if err := rect(0, 0, sheet.SheetWidth, sheet.SheetHeight, sheetFill, true); err != nil {
		return err
	}
	for _, r := range model.DetectRemnants(sheet) {
		if err := rect(r.X, r.Y, r.Width, r.Height, remnantFill, false); err != nil {
			return err
		}
	}
	for _, p := range sheet.Parts {
		if err := rect(p.X, p.Y, p.PlacedWidth, p.PlacedHeight, partColor(p.Name), true); err != nil {
			return fmt.Errorf("drawing %s: %w", p.InstanceID, err)
		}
	}

	return dc.EncodePNG(w)
}
