package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/sheetnest/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	pageMargin   = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = pageMargin + headerHeight + 5.0
)

// ExportPDF writes the layout report to path.
func ExportPDF(path string, result model.NestResult, settings model.NestSettings) error {
	doc, err := buildReport(result, settings)
	if err != nil {
		return err
	}
	return doc.OutputFileAndClose(path)
}

// WritePDF writes the layout report to w.
func WritePDF(w io.Writer, result model.NestResult, settings model.NestSettings) error {
	doc, err := buildReport(result, settings)
	if err != nil {
		return err
	}
	return doc.Output(w)
}

// buildReport lays out one page per sheet followed by a summary page.
func buildReport(result model.NestResult, settings model.NestSettings) (*fpdf.Fpdf, error) {
	if err := requireSheets(result); err != nil {
		return nil, err
	}

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetAutoPageBreak(false, pageMargin)
	doc.SetTitle("Nesting report", true)

	for _, sheet := range result.Sheets {
		doc.AddPage()
		drawSheetPage(doc, sheet, settings.Kerf)
	}
	doc.AddPage()
	drawSummaryPage(doc, result, settings)

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return doc, nil
}

func drawSheetPage(doc *fpdf.Fpdf, sheet model.SheetLayout, kerf float64) {
	contentW := pageWidth - 2*pageMargin

	doc.SetFont("Helvetica", "B", 14)
	doc.SetXY(pageMargin, pageMargin)
	title := fmt.Sprintf("Sheet %d: %s (%.0f x %.0f mm)", sheet.ID, sheet.Material, sheet.SheetWidth, sheet.SheetHeight)
	doc.CellFormat(contentW, headerHeight, title, "", 0, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetXY(pageMargin, pageMargin+headerHeight)
	stats := fmt.Sprintf("Parts: %d | Used box: %.0f x %.0f mm | Kerf: %.1f mm | Efficiency: %.1f%%",
		len(sheet.Parts), sheet.UsedWidth, sheet.UsedHeight, kerf, sheet.EfficiencyPercent)
	doc.CellFormat(contentW, 5, stats, "", 0, "L", false, 0, "")

	drawH := pageHeight - drawAreaTop - pageMargin - legendHeight
	scale := math.Min(contentW/sheet.SheetWidth, drawH/sheet.SheetHeight)
	canvasW, canvasH := sheet.SheetWidth*scale, sheet.SheetHeight*scale
	ox := pageMargin + (contentW-canvasW)/2
	oy := drawAreaTop

	setFill(doc, sheetFill)
	doc.SetDrawColor(100, 100, 100)
	doc.SetLineWidth(0.5)
	doc.Rect(ox, oy, canvasW, canvasH, "FD")

	for _, r := range model.DetectRemnants(sheet) {
		rx, ry := ox+r.X*scale, oy+r.Y*scale
		rw, rh := r.Width*scale, r.Height*scale
		setFill(doc, remnantFill)
		doc.SetDrawColor(56, 142, 60)
		doc.SetLineWidth(0.2)
		doc.Rect(rx, ry, rw, rh, "FD")
		hatch(doc, rx, ry, rw, rh)
		if rw > 25 && rh > 8 {
			doc.SetFont("Helvetica", "B", 6)
			doc.SetTextColor(27, 94, 32)
			text := fmt.Sprintf("REMNANT %.0fx%.0f", r.Width, r.Height)
			tw := doc.GetStringWidth(text)
			doc.SetXY(rx+(rw-tw)/2, ry+rh/2-2)
			doc.CellFormat(tw, 4, text, "", 0, "C", false, 0, "")
			doc.SetTextColor(0, 0, 0)
		}
	}

	for _, p := range sheet.Parts {
		px, py := ox+p.X*scale, oy+p.Y*scale
		pw, ph := p.PlacedWidth*scale, p.PlacedHeight*scale

		setFill(doc, partColor(p.Name))
		setDraw(doc, outline)
		doc.SetLineWidth(0.3)
		doc.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 {
			doc.SetFont("Helvetica", "", labelFontSize(pw, ph))
			doc.SetTextColor(0, 0, 0)
			centredText(doc, p.Name, px, py+ph/2-4, pw)
			if ph > 14 {
				centredText(doc, fmt.Sprintf("%.0fx%.0f", p.OriginalWidth, p.OriginalHeight), px, py+ph/2, pw)
			}
		}
	}

	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(80, 80, 80)
	centredText(doc, fmt.Sprintf("%.0f mm", sheet.SheetWidth), ox, oy+canvasH+1, canvasW)
	heightLabel := fmt.Sprintf("%.0f mm", sheet.SheetHeight)
	doc.TransformBegin()
	doc.TransformRotate(90, ox-3, oy+canvasH/2)
	hw := doc.GetStringWidth(heightLabel)
	doc.SetXY(ox-3-hw/2, oy+canvasH/2-2)
	doc.CellFormat(hw, 4, heightLabel, "", 0, "C", false, 0, "")
	doc.TransformEnd()
	doc.SetTextColor(0, 0, 0)

	drawLegend(doc, sheet, oy+canvasH+6)
}

// centredText prints text horizontally centred in a box of width w when it fits.
func centredText(doc *fpdf.Fpdf, text string, x, y, w float64) {
	tw := doc.GetStringWidth(text)
	if tw >= w-2 {
		return
	}
	doc.SetXY(x+(w-tw)/2, y)
	doc.CellFormat(tw, 4, text, "", 0, "C", false, 0, "")
}

func hatch(doc *fpdf.Fpdf, x, y, w, h float64) {
	doc.SetLineWidth(0.1)
	for d := 4.0; d < w+h; d += 4.0 {
		doc.Line(x+math.Max(0, d-h), y+math.Min(h, d), x+math.Min(w, d), y+math.Max(0, d-w))
	}
}

// drawLegend lists each distinct part on the sheet with its count.
func drawLegend(doc *fpdf.Fpdf, sheet model.SheetLayout, y float64) {
	if len(sheet.Parts) == 0 {
		return
	}

	type entry struct {
		name    string
		w, h    float64
		count   int
		rotated int
	}
	var entries []*entry
	byName := map[string]*entry{}
	for _, p := range sheet.Parts {
		e, ok := byName[p.Name]
		if !ok {
			e = &entry{name: p.Name, w: p.OriginalWidth, h: p.OriginalHeight}
			byName[p.Name] = e
			entries = append(entries, e)
		}
		e.count++
		if p.Rotated {
			e.rotated++
		}
	}

	doc.SetFont("Helvetica", "B", 8)
	doc.SetXY(pageMargin, y)
	doc.CellFormat(30, 4, "Parts placed:", "", 0, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 7)
	x := pageMargin + 32
	for _, e := range entries {
		text := fmt.Sprintf("%dx %s (%.0fx%.0f)", e.count, e.name, e.w, e.h)
		if e.rotated > 0 {
			text += fmt.Sprintf(" %dR", e.rotated)
		}
		w := doc.GetStringWidth(text) + 6
		if x+w > pageWidth-pageMargin {
			y += 5
			x = pageMargin
		}
		setFill(doc, partColor(e.name))
		doc.Rect(x, y+0.5, 3, 3, "F")
		doc.SetXY(x+4, y)
		doc.CellFormat(w-4, 4, text, "", 0, "L", false, 0, "")
		x += w + 2
	}
}

// materialEfficiency is the kerf-inclusive utilisation of one material's sheets.
func materialEfficiency(result model.NestResult, material string, kerf float64) float64 {
	var used, total float64
	for _, sheet := range result.SheetsForMaterial(material) {
		used += sheet.PartsArea(kerf)
		total += sheet.Area()
	}
	if total == 0 {
		return 0
	}
	return used / total * 100
}

func drawSummaryPage(doc *fpdf.Fpdf, result model.NestResult, settings model.NestSettings) {
	contentW := pageWidth - 2*pageMargin

	doc.SetFont("Helvetica", "B", 16)
	doc.SetXY(pageMargin, pageMargin)
	doc.CellFormat(contentW, 10, "Nesting Summary", "", 0, "L", false, 0, "")
	doc.SetLineWidth(0.5)
	doc.SetDrawColor(0, 0, 0)
	doc.Line(pageMargin, pageMargin+12, pageWidth-pageMargin, pageMargin+12)

	y := pageMargin + 18
	y = keyValues(doc, y, "Overall", [][2]string{
		{"Result", result.Message},
		{"Sheets used", fmt.Sprintf("%d", len(result.Sheets))},
		{"Overall efficiency", fmt.Sprintf("%.1f%%", result.TotalEfficiency(settings.Kerf))},
		{"Parts placed", fmt.Sprintf("%d of %d", result.TotalPacked, result.TotalInstances)},
		{"Kerf", fmt.Sprintf("%.1f mm", settings.Kerf)},
	})

	y += 4
	doc.SetFont("Helvetica", "B", 12)
	doc.SetXY(pageMargin, y)
	doc.CellFormat(100, 7, "Materials", "", 0, "L", false, 0, "")
	y += 9

	widths := []float64{55, 40, 22, 22, 22, 22, 24, 40}
	header := []string{"Material", "Sheet", "Sheets", "Parts", "Placed", "Unplaced", "Efficiency", "Stopped"}
	y = tableRow(doc, y, widths, header, true, 0)
	doc.SetFont("Helvetica", "", 9)
	for i, m := range result.Materials {
		y = tableRow(doc, y, widths, []string{
			m.Material,
			fmt.Sprintf("%.0f x %.0f", m.SheetWidth, m.SheetHeight),
			fmt.Sprintf("%d", m.Sheets),
			fmt.Sprintf("%d", m.Instances),
			fmt.Sprintf("%d", m.Packed),
			fmt.Sprintf("%d", m.Unpacked),
			fmt.Sprintf("%.1f%%", materialEfficiency(result, m.Material, settings.Kerf)),
			haltText(m.Halt),
		}, false, i)
	}

	if len(result.Unpacked) > 0 {
		y += 8
		doc.SetFont("Helvetica", "B", 11)
		doc.SetTextColor(200, 0, 0)
		doc.SetXY(pageMargin, y)
		doc.CellFormat(200, 7, "WARNING: Parts not placed", "", 0, "L", false, 0, "")
		y += 8
		doc.SetFont("Helvetica", "", 9)
		doc.SetTextColor(0, 0, 0)
		for _, line := range unpackedLines(result.Unpacked) {
			if y > pageHeight-pageMargin-6 {
				break
			}
			doc.SetXY(pageMargin+5, y)
			doc.CellFormat(contentW-5, 5, line, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	doc.SetFont("Helvetica", "I", 8)
	doc.SetTextColor(120, 120, 120)
	doc.SetXY(pageMargin, pageHeight-pageMargin)
	doc.CellFormat(contentW, 4, "Generated by sheetnest", "", 0, "C", false, 0, "")
	doc.SetTextColor(0, 0, 0)
}

func keyValues(doc *fpdf.Fpdf, y float64, title string, items [][2]string) float64 {
	doc.SetFont("Helvetica", "B", 12)
	doc.SetXY(pageMargin, y)
	doc.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
	y += 9
	for _, kv := range items {
		doc.SetXY(pageMargin+5, y)
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(50, 6, kv[0]+":", "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(180, 6, kv[1], "", 0, "L", false, 0, "")
		y += 7
	}
	return y
}

func tableRow(doc *fpdf.Fpdf, y float64, widths []float64, cells []string, header bool, index int) float64 {
	switch {
	case header:
		doc.SetFont("Helvetica", "B", 9)
		doc.SetFillColor(230, 230, 230)
	case index%2 == 0:
		doc.SetFillColor(245, 245, 245)
	default:
		doc.SetFillColor(255, 255, 255)
	}
	x := pageMargin
	for i, c := range cells {
		doc.SetXY(x, y)
		doc.CellFormat(widths[i], 6, c, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	return y + 6
}

func haltText(h model.HaltReason) string {
	switch h {
	case model.HaltNoProgress:
		return "part too large"
	case model.HaltSheetCap:
		return "sheet limit"
	default:
		return "-"
	}
}

// unpackedLines groups unplaced instances by spec name and size.
func unpackedLines(unpacked []model.PartInstance) []string {
	type key struct {
		name, material string
		w, h           float64
	}
	counts := map[key]int{}
	var order []key
	for _, u := range unpacked {
		k := key{u.Name, u.Material, u.OriginalWidth, u.OriginalHeight}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	lines := make([]string, len(order))
	for i, k := range order {
		lines[i] = fmt.Sprintf("- %s: %.0f x %.0f mm, %s (qty: %d)",
			k.name, k.w, k.h, strings.ReplaceAll(k.material, "_", " "), counts[k])
	}
	return lines
}

func labelFontSize(w, h float64) float64 {
	switch m := math.Min(w, h); {
	case m > 40:
		return 8
	case m > 20:
		return 7
	default:
		return 6
	}
}

func setFill(doc *fpdf.Fpdf, c rgb) { doc.SetFillColor(c.R, c.G, c.B) }

func setDraw(doc *fpdf.Fpdf, c rgb) { doc.SetDrawColor(c.R, c.G, c.B) }
