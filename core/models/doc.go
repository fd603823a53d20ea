// Package models defines the GORM models shared by the reconciliation core,
// the CSV importer and the dashboard.
//
// # Ledger
//
// The ledger store holds three tables:
//   - students: one row per student with the derived outstanding balance.
//   - invoices: receivables, one row per invoice number.
//   - payments: receipts recorded against invoices. The pair (method, receipt_number)
//     is unique and is the natural key used for deduplication.
//
// # Gateways
//
// Each payment gateway keeps its own "payments" table whose primary key is a
// gateway-specific payment identifier (XenditPayment, PaperIDPayment).
//
// # Status
//
// StatusFor is the single rule used to derive an invoice status from its total and
// paid-to-date amounts.
package models
