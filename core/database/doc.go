// Package database handles database connections and schema inspection.
//
// It wraps GORM to open the three stores the integrator talks to: the accounting
// ledger and the two payment-gateway databases. Each store has its own Config
// section and may use a different driver:
//   - postgres: the production default.
//   - mysql: supported for ledgers hosted on MySQL.
//   - sqlite: embedded databases, used for local runs and tests.
//
// Connections are opened with error translation enabled, so a unique-constraint
// violation is reported as gorm.ErrDuplicatedKey regardless of the driver.
//
// # Schema Inspection
//
// GetTableColumns returns the live column list of a table, used by the integrity
// feature to compare the stores against the models in core/models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Ledger)
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
package database
