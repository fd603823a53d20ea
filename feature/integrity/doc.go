// Package integrity checks the stores the reconciliation depends on.
//
// # Checks Provided
//
//   - Schema: compares the live columns of the ledger tables (students, invoices,
//     payments) and of each gateway's payments table with the gorm models.
//   - Archive: verifies the run-report bucket exists and counts archived reports.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/archive : Runs the archive check (supports ?fix=true).
package integrity
