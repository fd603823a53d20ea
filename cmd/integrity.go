package cmd

import (
	"context"
	"fmt"
	"time"

	"payment-integrator/core/database"
	"payment-integrator/feature/integrity"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	integrityJSON bool
	fixArchive    bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the ledger and gateway schemas",
	Long: `Compares the tables of the ledger and of each gateway database with the
expected models and, when storage is enabled, checks the report archive bucket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()
		start := time.Now()

		var ledger *gorm.DB
		if conn, err := database.Connect(cfg.Ledger); err != nil {
			logg.Error("Ledger connection failed", zap.Error(err))
		} else {
			ledger = conn
			defer database.Close(conn)
		}
		stores := []integrity.Store{integrity.LedgerStore(ledger)}
		for src, gwCfg := range gatewayConfigs(cfg) {
			var gw *gorm.DB
			if conn, err := database.Connect(gwCfg); err != nil {
				logg.Error("Gateway connection failed", zap.String("source", string(src)), zap.Error(err))
			} else {
				gw = conn
				defer database.Close(conn)
			}
			stores = append(stores, integrity.GatewayStore(src, gw))
		}

		svc := integrity.NewService(stores, archive(cfg, logg), logg)
		reports := svc.CheckSchema()

		if integrityJSON {
			data, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			fmt.Println(string(data))
		} else {
			fmt.Println("\n=== Schema Integrity ===")
			for _, r := range reports {
				status := "ok"
				if !r.Matched {
					status = "drift"
				}
				fmt.Printf("%s: %s\n", r.Store, status)
				for table, tbl := range r.Tables {
					for _, col := range tbl.MissingColumns {
						fmt.Printf("  %s: missing column %s\n", table, col)
					}
					for _, m := range tbl.TypeMismatches {
						fmt.Printf("  %s: %s\n", table, m)
					}
				}
				for _, e := range r.Errors {
					fmt.Printf("  error: %s\n", e)
				}
			}
		}

		if svc.ArchiveEnabled() {
			ctx := context.Background()
			report, err := svc.CheckArchive(ctx)
			switch {
			case err != nil:
				logg.Error("Archive check failed", zap.Error(err))
			case !report.BucketExists && fixArchive:
				if err := svc.FixArchive(ctx); err != nil {
					return err
				}
			default:
				logg.Info("Report archive",
					zap.String("bucket", report.Bucket),
					zap.Bool("exists", report.BucketExists),
					zap.Int("reports", report.Reports))
				if report.Latest != nil {
					logg.Info("Latest archived run",
						zap.String("run_id", report.Latest.RunID),
						zap.String("outcome", string(report.Latest.Outcome)),
						zap.Int("processed", report.Latest.Stats.Processed),
						zap.Int("errors", report.Latest.Stats.Errors),
						zap.Time("finished_at", report.Latest.FinishedAt))
				}
			}
		}

		fmt.Printf("Execution Time: %s\n", time.Since(start).String())
		if !integrity.Healthy(reports) {
			return fmt.Errorf("schema drift detected")
		}
		return nil
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&integrityJSON, "json", false, "Print the schema report as JSON")
	integrityCmd.Flags().BoolVar(&fixArchive, "fix", false, "Create the report archive bucket when missing")
	RootCmd.AddCommand(integrityCmd)
}
