package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetnest/internal/engine"
	"github.com/piwi3910/sheetnest/internal/model"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func newCompareCmd(a *app) *cobra.Command {
	var jf jobFlags
	cmd := &cobra.Command{
		Use:   "compare [parts-file]",
		Short: "Compare nesting under alternative kerf and sheet orientation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, sizes, settings, err := jf.resolve(cmd, a, args)
			if err != nil {
				return err
			}
			scenarios := engine.BuildDefaultScenarios(settings, sizes)
			results, err := engine.CompareScenarios(cmd.Context(), scenarios, parts, engine.WithLogger(a.logger))
			if err != nil {
				return err
			}

			best := engine.BestScenario(results)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "\tSCENARIO\tSHEETS\tWASTE %\tUNPLACED")
			for i, r := range results {
				mark := ""
				if i == best {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%d\n", mark, r.Scenario.Name, r.SheetsUsed, r.WastePercent, r.UnpackedCount)
			}
			return tw.Flush()
		},
	}
	jf.register(cmd)
	return cmd
}

func newEstimateCmd(a *app) *cobra.Command {
	var jf jobFlags
	cmd := &cobra.Command{
		Use:   "estimate [parts-file]",
		Short: "Estimate sheets needed per material from part area",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, sizes, settings, err := jf.resolve(cmd, a, args)
			if err != nil {
				return err
			}
			if err := engine.ValidateSpecs(parts); err != nil {
				return err
			}
			printEstimate(cmd.OutOrStdout(), model.EstimateMaterials(parts, sizes, settings))
			return nil
		},
	}
	jf.register(cmd)
	return cmd
}

func printEstimate(w io.Writer, estimates []model.MaterialEstimate) {
	tw := newTable(w)
	fmt.Fprintln(tw, "MATERIAL\tSHEET\tPARTS\tAREA m2\tSHEETS (EXACT)\tSHEETS (MIN)")
	for _, e := range estimates {
		fmt.Fprintf(tw, "%s\t%.0fx%.0f\t%d\t%.2f\t%.2f\t%d\n",
			e.Material, e.Sheet.Width, e.Sheet.Height, e.Instances, e.TotalPartArea/1e6, e.SheetsNeededExact, e.SheetsNeededMin)
	}
	_ = tw.Flush()
}
