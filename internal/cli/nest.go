package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/sheetnest/internal/engine"
	"github.com/piwi3910/sheetnest/internal/export"
	"github.com/piwi3910/sheetnest/internal/model"
	"github.com/piwi3910/sheetnest/internal/project"
)

// jobFlags select the cut list, sheet sizes and settings for a run.
type jobFlags struct {
	sheets    string
	job       string
	kerf      float64
	maxSheets int
	parallel  bool
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheets, "sheets", "", "sheet sizes per material (.json or .csv)")
	cmd.Flags().StringVar(&f.job, "job", "", "load parts, sheet sizes and settings from a saved job")
	cmd.Flags().Float64Var(&f.kerf, "kerf", 0, "blade clearance in mm")
	cmd.Flags().IntVar(&f.maxSheets, "max-sheets", 0, "maximum sheets opened per material")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "pack materials concurrently")
}

// resolve returns the parts, sizes and settings for the run. Flags beat the
// job file, which beats the config.
func (f *jobFlags) resolve(cmd *cobra.Command, a *app, args []string) ([]model.PartSpec, model.SheetSizeConfig, model.NestSettings, error) {
	settings := a.cfg.Nest
	sizes := a.cfg.SheetSizeTable()
	var parts []model.PartSpec

	switch {
	case f.job != "" && len(args) > 0:
		return nil, nil, settings, fmt.Errorf("give either a parts file or --job, not both")
	case f.job != "":
		job, err := project.LoadJob(f.job)
		if err != nil {
			return nil, nil, settings, err
		}
		a.logger.Info("job loaded", zap.String("job", job.Name), zap.Int("instances", job.TotalQuantity()))
		parts = job.Parts
		sizes = mergeSizes(sizes, job.SheetSizes)
		settings = job.Settings
	case len(args) == 1:
		var err error
		if parts, err = loadParts(args[0], a.logger); err != nil {
			return nil, nil, settings, err
		}
	default:
		return nil, nil, settings, fmt.Errorf("a parts file or --job is required")
	}

	if f.sheets != "" {
		extra, err := loadSheetSizes(f.sheets)
		if err != nil {
			return nil, nil, settings, err
		}
		sizes = mergeSizes(sizes, extra)
	}

	flags := cmd.Flags()
	if flags.Changed("kerf") {
		settings.Kerf = f.kerf
	}
	if flags.Changed("max-sheets") {
		settings.MaxSheetsPerMaterial = f.maxSheets
	}
	if flags.Changed("parallel") {
		settings.Parallel = f.parallel
	}
	return parts, sizes, settings, nil
}

type nestOutputs struct {
	out     string
	pdf     string
	labels  string
	dxf     string
	xlsx    string
	pngDir  string
	chart   string
	saveJob string
}

func newNestCmd(a *app) *cobra.Command {
	var jf jobFlags
	var o nestOutputs

	cmd := &cobra.Command{
		Use:   "nest [parts-file]",
		Short: "Pack a cut list onto sheets and write the layout",
		Long: "Pack a cut list onto sheets. Parts are read from .json, .csv, .xlsx or .dxf.\n" +
			"The result is written as JSON to --out (stdout by default), plus any requested exports.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, sizes, settings, err := jf.resolve(cmd, a, args)
			if err != nil {
				return err
			}

			if o.saveJob != "" {
				name := filepath.Base(o.saveJob)
				if len(args) == 1 {
					name = filepath.Base(args[0])
				}
				if err := project.SaveJob(o.saveJob, model.NewJob(name, parts, sizes, settings)); err != nil {
					return fmt.Errorf("saving job: %w", err)
				}
			}

			result, err := engine.New(settings, engine.WithLogger(a.logger)).Nest(cmd.Context(), parts, sizes)
			if err != nil {
				return err
			}

			if err := writeResult(cmd.OutOrStdout(), o.out, result); err != nil {
				return err
			}
			if err := writeExports(o, result, settings, a.logger); err != nil {
				return err
			}
			if o.out != "" {
				printSummary(cmd.OutOrStdout(), result, settings)
			}

			if !result.Success {
				return fmt.Errorf("%w: %d of %d", ErrIncomplete, result.TotalUnpacked, result.TotalInstances)
			}
			return nil
		},
	}

	jf.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&o.out, "out", "o", "", "write the result JSON to this file instead of stdout")
	f.StringVar(&o.pdf, "pdf", "", "write a PDF layout report")
	f.StringVar(&o.labels, "labels", "", "write a PDF of QR-coded part labels")
	f.StringVar(&o.dxf, "dxf", "", "write a DXF drawing of all sheets")
	f.StringVar(&o.xlsx, "xlsx", "", "write an Excel cut list")
	f.StringVar(&o.pngDir, "png-dir", "", "write one PNG preview per sheet into this directory")
	f.StringVar(&o.chart, "chart", "", "write an HTML utilisation chart")
	f.StringVar(&o.saveJob, "save-job", "", "save the parts, sheet sizes and settings as a job file")
	return cmd
}

func writeResult(stdout io.Writer, path string, result model.NestResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeExports(o nestOutputs, result model.NestResult, settings model.NestSettings, logger *zap.Logger) error {
	if len(result.Sheets) == 0 {
		if o.pdf != "" || o.labels != "" || o.dxf != "" || o.pngDir != "" || o.chart != "" {
			logger.Warn("no sheets were used, skipping layout exports")
		}
		if o.xlsx != "" {
			return export.ExportCutList(o.xlsx, result)
		}
		return nil
	}

	steps := []struct {
		path string
		run  func(string) error
	}{
		{o.pdf, func(p string) error { return export.ExportPDF(p, result, settings) }},
		{o.labels, func(p string) error { return export.ExportLabels(p, result) }},
		{o.dxf, func(p string) error { return export.ExportDXF(p, result) }},
		{o.xlsx, func(p string) error { return export.ExportCutList(p, result) }},
		{o.chart, func(p string) error { return writeFile(p, func(w io.Writer) error { return export.RenderEfficiencyChart(w, result, settings) }) }},
		{o.pngDir, func(dir string) error { return writePreviews(dir, result) }},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		if err := s.run(s.path); err != nil {
			return fmt.Errorf("writing %s: %w", s.path, err)
		}
		logger.Info("export written", zap.String("path", s.path))
	}
	return nil
}

func writePreviews(dir string, result model.NestResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, sheet := range result.Sheets {
		path := filepath.Join(dir, fmt.Sprintf("sheet-%02d.png", sheet.ID))
		err := writeFile(path, func(w io.Writer) error {
			return export.RenderSheetPNG(w, sheet, export.DefaultPreviewSize)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, result model.NestResult, settings model.NestSettings) {
	fmt.Fprintln(w, result.Message)
	tw := newTable(w)
	fmt.Fprintln(tw, "MATERIAL\tSHEET\tPARTS\tPACKED\tSHEETS\tHALT")
	for _, m := range result.Materials {
		fmt.Fprintf(tw, "%s\t%.0fx%.0f\t%d\t%d\t%d\t%s\n", m.Material, m.SheetWidth, m.SheetHeight, m.Instances, m.Packed, m.Sheets, m.Halt)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Overall efficiency: %.1f%%\n", result.TotalEfficiency(settings.Kerf))
	remnants := model.DetectAllRemnants(result)
	fmt.Fprintf(w, "Reusable remnants: %d (%.2f m2)\n", len(remnants), model.TotalRemnantArea(remnants)/1e6)
}
