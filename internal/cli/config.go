package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetnest/internal/model"
	"github.com/piwi3910/sheetnest/internal/project"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file and backups",
	}

	var force bool
	var sheets string
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			cfg := model.DefaultAppConfig()
			if sheets != "" {
				sizes, err := loadSheetSizes(sheets)
				if err != nil {
					return fmt.Errorf("reading sheet sizes: %w", err)
				}
				cfg.SheetSizes = model.MaterialSheets(sizes)
			}
			if err := project.SaveAppConfig(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&sheets, "sheets", "", "seed per-material sheet sizes from a JSON or CSV file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.cfg)
		},
	}

	var jobsDir string
	exportCmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Back up the configuration and saved jobs to one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := project.ListJobs(jobsDir)
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], a.cfg, jobs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported config and %d job(s) to %s\n", len(jobs), args[0])
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Restore the configuration and saved jobs from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			path := a.configPath
			if path == "" {
				path = project.DefaultConfigPath()
			}
			if err := project.RestoreBackup(backup, path, jobsDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s and %d job(s)\n", path, len(backup.Jobs))
			return nil
		},
	}
	for _, c := range []*cobra.Command{exportCmd, importCmd} {
		c.Flags().StringVar(&jobsDir, "jobs-dir", project.DefaultJobsDir(), "directory holding saved jobs")
	}

	cmd.AddCommand(initCmd, showCmd, exportCmd, importCmd)
	return cmd
}
