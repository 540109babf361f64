package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/sheetnest/internal/importer"
	"github.com/piwi3910/sheetnest/internal/model"
)

// loadParts reads a cut list, choosing the reader by file extension.
func loadParts(path string, logger *zap.Logger) ([]model.PartSpec, error) {
	var res importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return importer.DecodeParts(f)
	case ".csv", ".txt":
		res = importer.ImportCSV(path)
	case ".xlsx", ".xlsm":
		res = importer.ImportExcel(path)
	case ".dxf":
		res = importer.ImportDXF(path)
	default:
		return nil, fmt.Errorf("unsupported parts file %q (want .json, .csv, .xlsx or .dxf)", filepath.Base(path))
	}

	for _, w := range res.Warnings {
		logger.Warn("import warning", zap.String("file", path), zap.String("detail", w))
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%s: %d row error(s): %s", filepath.Base(path), len(res.Errors), strings.Join(res.Errors, "; "))
	}
	logger.Debug("parts imported", zap.String("file", path), zap.Int("specs", len(res.Parts)))
	return res.Parts, nil
}

// loadSheetSizes reads a per-material sheet size table from JSON or CSV.
func loadSheetSizes(path string) (model.SheetSizeConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return importer.DecodeSheetSizes(f)
	case ".csv", ".txt":
		return importer.ImportSheetSizesCSV(f)
	default:
		return nil, fmt.Errorf("unsupported sheet size file %q (want .json or .csv)", filepath.Base(path))
	}
}

// mergeSizes layers override on top of base.
func mergeSizes(base, override model.SheetSizeConfig) model.SheetSizeConfig {
	out := make(model.SheetSizeConfig, len(base)+len(override))
	for m, s := range base {
		out[m] = s
	}
	for m, s := range override {
		out[m] = s
	}
	return out
}
