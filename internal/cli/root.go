// Package cli implements the sheetnest command line.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/sheetnest/internal/logging"
	"github.com/piwi3910/sheetnest/internal/model"
	"github.com/piwi3910/sheetnest/internal/project"
)

// ErrIncomplete is returned by nest when some parts could not be placed.
// The layout and exports are still written.
var ErrIncomplete = errors.New("not all parts could be placed")

// app carries state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	cfg    model.AppConfig
	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "sheetnest",
		Short:         "Nest rectangular parts onto stock sheets",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./sheetnest.yaml or ~/.sheetnest/sheetnest.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		newNestCmd(a),
		newCompareCmd(a),
		newEstimateCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := project.LoadAppConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.MustNew(cfg.Log)
	return nil
}
