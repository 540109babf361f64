package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/sheetnest/internal/model"
)

// ─── Detection ─────────────────────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Name,Width,Height,Qty\nShelf,600,300,2\nDoor,400,800,1\n", ','},
		{"semicolon", "Name;Width;Height;Qty\nShelf;600;300;2\nDoor;400;800;1\n", ';'},
		{"tab", "Name\tWidth\tHeight\tQty\nShelf\t600\t300\t2\n", '\t'},
		{"pipe", "Name|Width|Height|Qty\nShelf|600|300|2\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Name", "Width", "Height", "Quantity", "Material", "Grain"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{0, 1, 2, 3, 4, 5}
	if mapping != want {
		t.Errorf("expected %v, got %v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"QTY", "Board", "H", "W", "Part Name"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping[colQuantity] != 0 || mapping[colMaterial] != 1 || mapping[colHeight] != 2 ||
		mapping[colWidth] != 3 || mapping[colName] != 4 {
		t.Errorf("unexpected mapping %v", mapping)
	}
	if mapping[colGrain] != -1 {
		t.Errorf("expected grain column absent, got %d", mapping[colGrain])
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Shelf", "600", "300", "2"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping != positionalMapping {
		t.Errorf("expected positional mapping, got %v", mapping)
	}
}

// ─── CSV ───────────────────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Name,Width,Height,Quantity,Material,Grain\nShelf,600,300,2,Birch,With\nDoor,400,800,1,,reverse\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(result.Parts))
	}
	shelf := result.Parts[0]
	if shelf.Name != "Shelf" || shelf.Width != 600 || shelf.Height != 300 || shelf.Quantity != 2 {
		t.Errorf("unexpected shelf %+v", shelf)
	}
	if shelf.Material != "Birch" {
		t.Errorf("expected material Birch, got %q", shelf.Material)
	}
	if shelf.Grain != model.GrainWith {
		t.Errorf("expected GrainWith, got %v", shelf.Grain)
	}
	door := result.Parts[1]
	if door.MaterialKey() != model.DefaultMaterial {
		t.Errorf("expected default material, got %q", door.MaterialKey())
	}
	if door.Grain != model.GrainReverse {
		t.Errorf("expected GrainReverse, got %v", door.Grain)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Shelf,600,300,2,MDF\nDoor,400,800,1\n"), ',')

	if len(result.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d (errors: %v)", len(result.Parts), result.Errors)
	}
	if result.Parts[0].Material != "MDF" {
		t.Errorf("expected positional material MDF, got %q", result.Parts[0].Material)
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Teil,Breite,Hoehe,Anzahl\nShelf,600,300,2\n"), ',')
	if len(result.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d (errors: %v)", len(result.Parts), result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a header warning")
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"invalid width", "Shelf,abc,300,2", "invalid width"},
		{"missing height", "Shelf,600,,2", "missing height"},
		{"invalid quantity", "Shelf,600,300,x", "invalid quantity"},
		{"negative", "Shelf,-600,300,2", "must be positive"},
		{"zero quantity", "Shelf,600,300,0", "must be positive"},
		{"bad grain", "Shelf,600,300,1,MDF,diagonal", "unknown grain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "Name,Width,Height,Quantity,Material,Grain\n" + tt.row + "\n"
			result := ImportCSVFromReader(strings.NewReader(data), ',')
			if len(result.Errors) != 1 {
				t.Fatalf("expected 1 error, got %v", result.Errors)
			}
			if !strings.Contains(result.Errors[0], tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, result.Errors[0])
			}
			if !strings.HasPrefix(result.Errors[0], "line 2") {
				t.Errorf("expected line number in %q", result.Errors[0])
			}
		})
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "Name,Width,Height,Qty\nA,100,100,1\nB,bad,100,1\n\nC,200,200,2\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Parts) != 2 {
		t.Errorf("expected 2 valid parts, got %d", len(result.Parts))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(result.Errors))
	}
	if result.OK() {
		t.Error("result with row errors should not be OK")
	}
}

func TestImportCSVFromReader_DefaultsNameAndQuantity(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Height\n,600,300\n"), ',')
	if len(result.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d (errors: %v)", len(result.Parts), result.Errors)
	}
	if result.Parts[0].Name != "Part 1" {
		t.Errorf("expected generated name, got %q", result.Parts[0].Name)
	}
	if result.Parts[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", result.Parts[0].Quantity)
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Qty\nA,100,1\n"), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Height") {
		t.Errorf("expected missing Height error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Height,Qty\n"), ',')
	if len(result.Parts) != 0 || len(result.Errors) != 1 {
		t.Errorf("expected no parts and one error, got %d parts, errors %v", len(result.Parts), result.Errors)
	}
}

func TestImportCSVData_SemicolonWithDecimalComma(t *testing.T) {
	result := ImportCSVData([]byte("Name;Width;Height;Qty\nShelf;600,5;300;2\n"))
	if len(result.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d (errors: %v)", len(result.Parts), result.Errors)
	}
	if result.Parts[0].Width != 600.5 {
		t.Errorf("expected width 600.5, got %f", result.Parts[0].Width)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.csv")
	if err := os.WriteFile(path, []byte("Name,Width,Height,Qty\nShelf,600,300,2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if !result.OK() {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestImportCSV_FileNotFoundAndEmpty(t *testing.T) {
	if result := ImportCSV("/nonexistent/parts.csv"); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel ─────────────────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to create cell reference: %v", err)
		}
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			t.Fatalf("failed to set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Name", "Width", "Height", "Quantity", "Material", "Grain"},
		{"Shelf", 600, 300, 2, "Oak", "with"},
		{"Door", 400, 800, 1, "Oak", ""},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(result.Parts))
	}
	if result.Parts[0].Grain != model.GrainWith || result.Parts[0].Material != "Oak" {
		t.Errorf("unexpected first part %+v", result.Parts[0])
	}
}

func TestImportExcelFromReader(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{{"Shelf", 600, 300, 2}})
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	result := ImportExcelFromReader(f)
	if len(result.Parts) != 1 || result.Parts[0].Quantity != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	if result := ImportExcel("/nonexistent/file.xlsx"); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── Sheet sizes ───────────────────────────────────────────

func TestImportSheetSizesCSV(t *testing.T) {
	sizes, err := ImportSheetSizesCSV(strings.NewReader("Material,Width,Height\nMDF,2440,1220\nOak;veneer,1830,910\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sizes["MDF"] != (model.SheetSize{Width: 2440, Height: 1220}) {
		t.Errorf("unexpected MDF size %v", sizes["MDF"])
	}
	if _, ok := sizes["Oak;veneer"]; !ok {
		t.Errorf("expected Oak;veneer entry, got %v", sizes)
	}

	if _, err := ImportSheetSizesCSV(strings.NewReader("MDF,2440,1220\nOak,wide,910\n")); err == nil {
		t.Error("expected error for non-numeric width")
	}
}
