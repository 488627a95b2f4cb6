package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/config"
	"github.com/testforge/hrm-e2e/internal/observability"
)

// errRunFailed makes the process exit non-zero after the summary has been
// printed
var errRunFailed = errors.New("run failed")

// app carries what every subcommand needs once configuration is loaded
type app struct {
	envFile string
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "hrmsuite",
		Short:         "Browser end-to-end checks for an OrangeHRM deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if a.envFile != "" {
				files = append(files, a.envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = observability.NewLogger(cfg.GetLogLevel(), cfg.Debug)
			a.metrics = observability.NewMetrics("hrm_e2e")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "env file to load before the environment (default .env when present)")

	root.AddCommand(newRunCmd(a), newListCmd(a), newServeCmd(a))
	return root
}

// revalidate re-checks configuration after flags overrode it
func (a *app) revalidate() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("validating flags: %w", err)
	}
	return nil
}
