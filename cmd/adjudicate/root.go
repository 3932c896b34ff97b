package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/claims-intake/internal/config"
	"github.com/garyjia/claims-intake/pkg/utils"
)

// cli carries state loaded once in the root command's pre-run hook
type cli struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{}

	rootCmd := &cobra.Command{
		Use:   "adjudicate",
		Short: "Offline claim auto-adjudication",
		Long: `Evaluates claim snapshots with the same guardrail engine the claims API uses.

Thresholds come from the service configuration file and environment, and can be
overridden per run with flags. The verdict is printed as JSON on stdout; logs go
to stderr.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForEngine(app.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app.cfg = cfg

			// stdout is reserved for the verdict
			output := cfg.Logger.OutputPath
			if output == "" || output == "stdout" {
				output = "stderr"
			}
			logger, err := utils.NewLogger(utils.LoggerConfig{
				Level:      cfg.Logger.Level,
				OutputPath: output,
				Format:     cfg.Logger.Format,
				Service:    "adjudicate",
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			app.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.cfgFile, "config", "c", "configs/config.yaml", "config file path")
	rootCmd.AddCommand(newEvaluateCmd(app))

	return rootCmd
}
