// Package config provides configuration management for the payment integrator.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of every
// partial configuration.
//
// # Configuration Structure
//
//   - Ledger, Xendit, PaperID: one database section per store (LEDGER_HOST, XENDIT_NAME, ...)
//   - Reconcile: timezone used to decide "today", insert batch size, archive prefix
//   - Importer: CSV delimiter and the ledger payment methods accepted on import
//   - Server: dashboard port and snapshot cache lifetime
//   - Storage: S3/MinIO settings of the run-report archive
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Ledger.Host)
package config
