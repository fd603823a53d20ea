package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"payment-integrator/core/config"
	"payment-integrator/core/database"
	"payment-integrator/core/reconcile"
	"payment-integrator/core/storage"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reconcileJSON bool

// reconcileCmd runs one reconciliation pass.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Integrate new gateway payments into the ledger",
	Long: `Reads every payment from the Xendit and Paper.id databases, skips the ones
the ledger already records and inserts the rest in a single transaction.
Invoice paid amounts, statuses and student balances are refreshed afterwards.

A failed insert leaves the ledger untouched; check the error log and run again.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Print the run result as JSON")
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()

	l.Info("Starting reconciliation")

	stores, err := reconcile.OpenStores(cfg.Ledger, gatewayConfigs(cfg), database.Connect, l)
	if err != nil {
		fmt.Printf("Critical failure: %v\n\nAction required: check error logs and retry\n", err)
		return err
	}

	engine, err := reconcile.NewEngine(cfg.Reconcile, l, reconcile.WithReporters(reporters(ctx, cfg, l)...))
	if err != nil {
		_ = stores.Close()
		return err
	}

	res := engine.Run(ctx, stores)

	if reconcileJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(data))
	} else if err := reconcile.WriteSummary(os.Stdout, res); err != nil {
		return err
	}

	if !res.Succeeded() {
		return fmt.Errorf("reconciliation aborted: %w", res.Cause)
	}
	return nil
}

// reporters builds the log reporter and, when storage is enabled, the archive reporter.
// An unreachable archive only disables archiving.
func reporters(ctx context.Context, cfg *config.Config, l *zap.Logger) []reconcile.Reporter {
	out := []reconcile.Reporter{reconcile.NewLogReporter(l)}
	if !cfg.Storage.Enabled {
		return out
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		l.Warn("Report archive disabled", zap.Error(err))
		return out
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		l.Warn("Report archive disabled", zap.Error(err))
		return out
	}
	return append(out, reconcile.NewArchiveReporter(client, cfg.Storage.Bucket, cfg.Reconcile.ArchivePrefix))
}
