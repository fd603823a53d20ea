package cmd

import (
	"fmt"
	"os"

	"payment-integrator/core/config"
	"payment-integrator/core/database"
	"payment-integrator/core/logger"
	"payment-integrator/core/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "payment-integrator",
	Short: "Tuition payment reconciliation",
	Long: `Payment Integrator pulls payments from the Xendit and Paper.id gateway
databases into the accounting ledger and keeps invoice and student balances current.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development preset gives readable timestamps for a CLI
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	return cfg, l, nil
}

// gatewayConfigs returns the store configuration of every gateway.
func gatewayConfigs(cfg *config.Config) map[models.Source]database.Config {
	out := make(map[models.Source]database.Config, len(models.Sources))
	for _, src := range models.Sources {
		if c, ok := cfg.Gateway(src); ok {
			out[src] = c
		}
	}
	return out
}
