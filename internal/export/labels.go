package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/sheetnest/internal/model"
)

// LabelInfo is the data encoded into each part label's QR code.
type LabelInfo struct {
	InstanceID string  `json:"id"`
	Name       string  `json:"name"`
	Material   string  `json:"material"`
	Width      float64 `json:"width_mm"`
	Height     float64 `json:"height_mm"`
	Grain      string  `json:"grain,omitempty"`
	SheetID    int     `json:"sheet"`
	X          float64 `json:"x_mm"`
	Y          float64 `json:"y_mm"`
	Rotated    bool    `json:"rotated"`
}

// Avery 5160 compatible sheet: 3 columns x 10 rows on US Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelsPerPage   = labelCols * 10
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos returns one label per placed part in sheet order.
func CollectLabelInfos(result model.NestResult) []LabelInfo {
	var labels []LabelInfo
	for _, sheet := range result.Sheets {
		for _, p := range sheet.Parts {
			info := LabelInfo{
				InstanceID: p.InstanceID,
				Name:       p.Name,
				Material:   sheet.Material,
				Width:      p.OriginalWidth,
				Height:     p.OriginalHeight,
				SheetID:    sheet.ID,
				X:          p.X,
				Y:          p.Y,
				Rotated:    p.Rotated,
			}
			if p.Grain != model.GrainNone {
				info.Grain = p.Grain.String()
			}
			labels = append(labels, info)
		}
	}
	return labels
}

// ExportLabels writes a PDF of QR-coded labels, one per placed part.
func ExportLabels(path string, result model.NestResult) error {
	doc, err := buildLabels(result)
	if err != nil {
		return err
	}
	return doc.OutputFileAndClose(path)
}

func buildLabels(result model.NestResult) (*fpdf.Fpdf, error) {
	if err := requireSheets(result); err != nil {
		return nil, err
	}
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return nil, fmt.Errorf("no placed parts to label")
	}

	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetAutoPageBreak(false, 0)

	for i, info := range labels {
		slot := i % labelsPerPage
		if slot == 0 {
			doc.AddPage()
		}
		x := labelMarginLeft + float64(slot%labelCols)*labelWidth
		y := labelMarginTop + float64(slot/labelCols)*labelHeight
		if err := drawLabel(doc, x, y, info); err != nil {
			return nil, fmt.Errorf("label for %s: %w", info.InstanceID, err)
		}
	}
	return doc, nil
}

func drawLabel(doc *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	doc.SetDrawColor(200, 200, 200)
	doc.SetLineWidth(0.1)
	doc.Rect(x, y, labelWidth, labelHeight, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding label data: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generating QR code: %w", err)
	}

	// Instance IDs are unique within a run.
	img := "qr_" + info.InstanceID
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(img, opts, bytes.NewReader(png))
	doc.ImageOptions(img, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	doc.SetFont("Helvetica", "B", 9)
	doc.SetTextColor(0, 0, 0)
	doc.SetXY(textX, y+labelPadding)
	doc.CellFormat(textW, 4.5, fitText(doc, info.Name, textW), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 7)
	doc.SetXY(textX, y+labelPadding+5)
	doc.CellFormat(textW, 3.5, fmt.Sprintf("%.0f x %.0f mm", info.Width, info.Height), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 6)
	doc.SetTextColor(100, 100, 100)
	doc.SetXY(textX, y+labelPadding+9)
	doc.CellFormat(textW, 3, fitText(doc, info.Material, textW), "", 1, "L", false, 0, "")
	doc.SetXY(textX, y+labelPadding+12)
	doc.CellFormat(textW, 3, fmt.Sprintf("Sheet %d @ (%.0f, %.0f)", info.SheetID, info.X, info.Y), "", 1, "L", false, 0, "")

	var notes []string
	if info.Rotated {
		notes = append(notes, "Rotated 90\xb0")
	}
	if info.Grain != "" {
		notes = append(notes, "Grain "+info.Grain)
	}
	if len(notes) > 0 {
		doc.SetFont("Helvetica", "I", 6)
		doc.SetTextColor(150, 100, 0)
		doc.SetXY(textX, y+labelPadding+15.5)
		doc.CellFormat(textW, 3, fitText(doc, strings.Join(notes, ", "), textW), "", 0, "L", false, 0, "")
	}
	doc.SetTextColor(0, 0, 0)
	return nil
}

// fitText truncates s with an ellipsis to fit width w in the current font.
func fitText(doc *fpdf.Fpdf, s string, w float64) string {
	if doc.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && doc.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}
