package cmd

import (
	"context"
	"fmt"

	"payment-integrator/core/config"
	"payment-integrator/core/database"
	"payment-integrator/core/models"
	"payment-integrator/feature/importer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	studentsFile string
	invoicesFile string
	paymentsFile string
)

// importCmd is the parent command for CSV imports.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load CSV exports into the ledger or a gateway database",
	Long: `Loads ';' separated CSV exports. Rows that already exist are skipped and
rows that fail are reported without stopping the file.`,
}

var importLedgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Import students, invoices and payments into the ledger",
	Long: `Import accounting exports into the ledger.

Examples:
  import ledger --students students.csv
  import ledger --students students.csv --invoices invoices.csv --payments payments.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files := []struct {
			kind importer.Kind
			path string
		}{
			{importer.KindStudents, studentsFile},
			{importer.KindInvoices, invoicesFile},
			{importer.KindLedgerPayments, paymentsFile},
		}

		var jobs []importJob
		for _, f := range files {
			if f.path != "" {
				jobs = append(jobs, importJob{kind: f.kind, path: f.path})
			}
		}
		if len(jobs) == 0 {
			return fmt.Errorf("provide at least one CSV file with --students, --invoices or --payments")
		}

		return runImport(cmd.Context(), func(cfg *config.Config) database.Config { return cfg.Ledger }, jobs)
	},
}

func gatewayImportCmd(src models.Source, name string) *cobra.Command {
	return &cobra.Command{
		Use:   string(src) + " <csv_file>",
		Short: "Import " + name + " payments into the " + name + " database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := func(cfg *config.Config) database.Config {
				c, _ := cfg.Gateway(src)
				return c
			}
			return runImport(cmd.Context(), store, []importJob{{kind: importer.Kind(src), path: args[0]}})
		},
	}
}

func init() {
	importLedgerCmd.Flags().StringVar(&studentsFile, "students", "", "Path to the students CSV file")
	importLedgerCmd.Flags().StringVar(&invoicesFile, "invoices", "", "Path to the invoices CSV file")
	importLedgerCmd.Flags().StringVar(&paymentsFile, "payments", "", "Path to the payments CSV file")

	importCmd.AddCommand(importLedgerCmd)
	importCmd.AddCommand(gatewayImportCmd(models.SourceXendit, "Xendit"))
	importCmd.AddCommand(gatewayImportCmd(models.SourcePaperID, "Paper.id"))
	RootCmd.AddCommand(importCmd)
}

type importJob struct {
	kind importer.Kind
	path string
}

func runImport(ctx context.Context, store func(*config.Config) database.Config, jobs []importJob) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()

	loc, err := cfg.Reconcile.Location()
	if err != nil {
		return err
	}

	db, err := database.Connect(store(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func(db *gorm.DB) {
		if err := database.Close(db); err != nil {
			l.Warn("Failed to close database", zap.Error(err))
		}
	}(db)

	svc := importer.NewService(cfg.Importer, loc, l)
	failed := 0
	for _, job := range jobs {
		l.Info("Importing CSV", zap.String("kind", string(job.kind)), zap.String("file", job.path))
		report, err := svc.ImportFile(ctx, db, job.kind, job.path)
		if err != nil {
			return err
		}

		fmt.Printf("\n=== %s (%s) ===\n", job.kind, job.path)
		fmt.Printf("Inserted: %d\n", report.Inserted)
		fmt.Printf("Skipped: %d\n", report.Skipped)
		fmt.Printf("Failed: %d\n", report.Failed)
		for _, e := range report.Errors {
			fmt.Printf("  line %d: %s\n", e.Line, e.Message)
		}
		failed += report.Failed
	}

	if failed > 0 {
		l.Warn("Some rows could not be imported", zap.Int("failed", failed))
	}
	return nil
}
