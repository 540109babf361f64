package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/sheetnest/internal/model"
)

// Workbook sheet names.
const (
	SheetSummary    = "Summary"
	SheetPlacements = "Placements"
	SheetUnplaced   = "Unplaced"
)

// ExportCutList writes the cut list workbook to path.
func ExportCutList(path string, result model.NestResult) error {
	f, err := buildCutList(result)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// WriteCutList writes the cut list workbook to w.
func WriteCutList(w io.Writer, result model.NestResult) error {
	f, err := buildCutList(result)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func buildCutList(result model.NestResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	summary := [][]interface{}{
		{"Sheet", "Material", "Width", "Height", "Parts", "Used width", "Used height", "Efficiency %"},
	}
	for _, s := range result.Sheets {
		summary = append(summary, []interface{}{
			s.ID, s.Material, s.SheetWidth, s.SheetHeight, len(s.Parts), s.UsedWidth, s.UsedHeight, s.EfficiencyPercent,
		})
	}
	summary = append(summary,
		[]interface{}{},
		[]interface{}{"Parts placed", result.TotalPacked},
		[]interface{}{"Parts not placed", result.TotalUnpacked},
		[]interface{}{"Result", result.Message},
	)

	placements := [][]interface{}{
		{"Sheet", "Instance", "Name", "Material", "Width", "Height", "Grain", "X", "Y", "Placed width", "Placed height", "Rotated"},
	}
	for _, s := range result.Sheets {
		for _, p := range s.Parts {
			placements = append(placements, []interface{}{
				s.ID, p.InstanceID, p.Name, p.Material, p.OriginalWidth, p.OriginalHeight, p.Grain.String(),
				p.X, p.Y, p.PlacedWidth, p.PlacedHeight, p.Rotated,
			})
		}
	}

	unplaced := [][]interface{}{
		{"Instance", "Name", "Material", "Width", "Height", "Grain"},
	}
	for _, u := range result.Unpacked {
		unplaced = append(unplaced, []interface{}{
			u.InstanceID, u.Name, u.Material, u.OriginalWidth, u.OriginalHeight, u.Grain.String(),
		})
	}

	tables := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summary},
		{SheetPlacements, placements},
		{SheetUnplaced, unplaced},
	}
	for _, t := range tables {
		if t.name != SheetSummary {
			if _, err := f.NewSheet(t.name); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := writeRows(f, t.name, t.rows, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", t.name, err)
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(rows[0]))
	return f.SetColWidth(sheet, "A", lastCol, 14)
}
