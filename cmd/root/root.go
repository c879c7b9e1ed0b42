// Package root contains the root command for the application.
package root

import (
	"fmt"

	"finlight/cashflow-analyzer/internal/config"
	"finlight/cashflow-analyzer/internal/logging"

	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger logging.Logger

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "cashflow-analyzer",
		Short: "Analyze bank statements into a monthly cash flow profile.",
		Long: `cashflow-analyzer extracts transactions from uploaded bank statements,
categorizes them with an AI document collaborator, and produces the
monthly deposit, expense and leftover figures used for loan simulation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			loaded, err := config.InitializeConfig()
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			cfg = loaded
			logger = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Config returns the configuration loaded by the persistent pre-run hook.
func Config() *config.Config {
	return cfg
}

// Logger returns the logger configured by the persistent pre-run hook.
func Logger() logging.Logger {
	return logger
}
