// Package importer reads cut lists and sheet size tables from CSV, Excel,
// DXF and JSON. Delimiters and column order are detected from the data, and
// header names are matched case-insensitively against a set of aliases.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/sheetnest/internal/model"
)

// ImportResult holds the parts read from a file plus per-row problems.
// Rows with errors are left out of Parts.
type ImportResult struct {
	Parts    []model.PartSpec
	Errors   []string
	Warnings []string
}

// OK reports whether the import produced parts without row errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Parts) > 0
}

type column int

const (
	colName column = iota
	colWidth
	colHeight
	colQuantity
	colMaterial
	colGrain
	numColumns
)

var columnNames = [numColumns]string{"Name", "Width", "Height", "Quantity", "Material", "Grain"}

// headerAliases lists the accepted header spellings per column (lowercase).
var headerAliases = [numColumns][]string{
	colName:     {"name", "label", "part", "part name", "description", "desc", "piece", "item"},
	colWidth:    {"width", "w", "length", "len", "x"},
	colHeight:   {"height", "h", "depth", "d", "y"},
	colQuantity: {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	colMaterial: {"material", "mat", "board", "stock", "sheet"},
	colGrain:    {"grain", "grain direction", "direction", "grain dir"},
}

// ColumnMapping holds the index of each column in a row, or -1 when absent.
type ColumnMapping [numColumns]int

// positionalMapping is used when the first row is not a header:
// name, width, height, quantity, material, grain.
var positionalMapping = ColumnMapping{0, 1, 2, 3, 4, 5}

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and pipe
// that splits the data into the most consistent multi-column rows.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		cols := len(records[0])
		consistent := 0
		for _, row := range records {
			if len(row) == cols {
				consistent++
			}
		}
		if score := consistent*10 + cols; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// DetectColumns maps a header row to column indices. The bool is false when
// no cell matched a known header, in which case the positional mapping is
// returned.
func DetectColumns(row []string) (ColumnMapping, bool) {
	var m ColumnMapping
	for c := range m {
		m[c] = -1
	}

	found := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for c, aliases := range headerAliases {
			if m[c] != -1 {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					m[c] = i
					found = true
					break
				}
			}
		}
	}
	if !found {
		return positionalMapping, false
	}
	return m, true
}

func readCSV(r io.Reader, delim rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumber accepts a decimal comma as used in many European spreadsheets.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// parseRow turns one data row into a PartSpec. An empty error string means
// the row is usable.
func parseRow(row []string, m ColumnMapping, rowLabel string, partCount int) (model.PartSpec, string) {
	name := cell(row, m[colName])
	if name == "" {
		name = fmt.Sprintf("Part %d", partCount+1)
	}

	var dims [2]float64
	for i, c := range []column{colWidth, colHeight} {
		raw := cell(row, m[c])
		if raw == "" {
			return model.PartSpec{}, fmt.Sprintf("%s: missing %s", rowLabel, strings.ToLower(columnNames[c]))
		}
		v, err := parseNumber(raw)
		if err != nil {
			return model.PartSpec{}, fmt.Sprintf("%s: invalid %s %q", rowLabel, strings.ToLower(columnNames[c]), raw)
		}
		dims[i] = v
	}

	qtyRaw := cell(row, m[colQuantity])
	qty := 1
	if qtyRaw != "" {
		var err error
		if qty, err = strconv.Atoi(qtyRaw); err != nil {
			return model.PartSpec{}, fmt.Sprintf("%s: invalid quantity %q", rowLabel, qtyRaw)
		}
	}

	if dims[0] <= 0 || dims[1] <= 0 || qty <= 0 {
		return model.PartSpec{}, fmt.Sprintf("%s: width, height and quantity must be positive", rowLabel)
	}

	grain, err := model.ParseGrain(cell(row, m[colGrain]))
	if err != nil {
		return model.PartSpec{}, fmt.Sprintf("%s: %v", rowLabel, err)
	}

	spec := model.NewPartSpec(name, dims[0], dims[1], qty)
	spec.Material = cell(row, m[colMaterial])
	spec.Grain = grain
	return spec, ""
}

// ImportCSV reads a cut list from a CSV file with auto-detected delimiter.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot open file: %v", err)}}
	}
	return ImportCSVData(data)
}

// ImportCSVData reads a cut list from in-memory CSV data.
func ImportCSVData(data []byte) ImportResult {
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"file is empty"}}
	}

	var warnings []string
	delim := DetectCSVDelimiter(data)
	if delim != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delim]
		warnings = append(warnings, fmt.Sprintf("detected %s delimiter", name))
	}
	return ImportCSVFromReader(bytes.NewReader(data), delim, warnings...)
}

// ImportCSVFromReader reads a cut list with a known delimiter.
func ImportCSVFromReader(r io.Reader, delim rune, warnings ...string) ImportResult {
	records, err := readCSV(r, delim)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "line", warnings)
}

// ImportExcel reads a cut list from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot open Excel file: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f)
}

// ImportExcelFromReader reads a cut list from an Excel workbook stream.
func ImportExcelFromReader(r io.Reader) ImportResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot open Excel data: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f)
}

func importWorkbook(f *excelize.File) ImportResult {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"workbook has no sheets"}}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot read Excel data: %v", err)}}
	}
	return importFromRows(rows, "row", nil)
}

// importFromRows is shared by the CSV and Excel readers.
func importFromRows(rows [][]string, rowPrefix string, warnings []string) ImportResult {
	result := ImportResult{Warnings: warnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	switch {
	case hasHeader:
		start = 1
		var missing []string
		for _, c := range []column{colWidth, colHeight} {
			if mapping[c] == -1 {
				missing = append(missing, columnNames[c])
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	case len(rows[0]) >= 3:
		// An unrecognised header still has a non-numeric width cell.
		if _, err := parseNumber(cell(rows[0], 1)); err != nil {
			start = 1
			result.Warnings = append(result.Warnings, "first row is not numeric, treating it as a header")
		}
	}

	for i := start; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		spec, errMsg := parseRow(rows[i], mapping, fmt.Sprintf("%s %d", rowPrefix, i+1), len(result.Parts))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Parts = append(result.Parts, spec)
	}

	if len(result.Parts) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "no data rows found")
	}
	return result
}

// ImportSheetSizesCSV reads a material,width,height table. A header row is
// skipped when its width cell is not numeric.
func ImportSheetSizesCSV(r io.Reader) (model.SheetSizeConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sheet sizes: %w", err)
	}
	records, err := readCSV(bytes.NewReader(data), DetectCSVDelimiter(data))
	if err != nil {
		return nil, fmt.Errorf("parsing sheet sizes: %w", err)
	}

	sizes := model.SheetSizeConfig{}
	for i, row := range records {
		if isEmptyRow(row) {
			continue
		}
		mat := cell(row, 0)
		w, werr := parseNumber(cell(row, 1))
		h, herr := parseNumber(cell(row, 2))
		if werr != nil || herr != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid sheet size %q x %q", i+1, cell(row, 1), cell(row, 2))
		}
		if mat == "" {
			return nil, fmt.Errorf("line %d: missing material", i+1)
		}
		sizes[mat] = model.SheetSize{Width: w, Height: h}
	}
	return sizes, nil
}
