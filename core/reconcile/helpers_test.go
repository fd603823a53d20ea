package reconcile

import (
	"path/filepath"
	"testing"
	"time"

	"payment-integrator/core/database"
	"payment-integrator/core/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// openStore opens a file-backed sqlite store under t's temp dir and migrates models.
// The file outlives the handle so a run can close its stores and the test can reopen it.
func openStore(t *testing.T, file string, dst ...any) (*gorm.DB, database.Config) {
	t.Helper()
	cfg := database.Config{Driver: database.DriverSQLite, Name: filepath.Join(t.TempDir(), file)}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(dst...))
	return db, cfg
}

// reopen connects to an existing store and closes it at test end.
func reopen(t *testing.T, cfg database.Config) *gorm.DB {
	t.Helper()
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func openLedger(t *testing.T) (*gorm.DB, database.Config) {
	return openStore(t, "ledger.db", &models.Student{}, &models.Invoice{}, &models.Payment{})
}

func openXendit(t *testing.T) (*gorm.DB, database.Config) {
	return openStore(t, "xendit.db", &models.XenditPayment{})
}

func openPaperID(t *testing.T) (*gorm.DB, database.Config) {
	return openStore(t, "paperid.db", &models.PaperIDPayment{})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ledgerPayment(method, receipt, invoice string, amount string) models.Payment {
	return models.Payment{
		StudentID:     "S1",
		PaymentDate:   testNow.Add(-48 * time.Hour),
		InvoiceNumber: invoice,
		Amount:        dec(amount),
		Method:        method,
		ReceiptNumber: receipt,
		LastUpdated:   testNow.Add(-48 * time.Hour),
	}
}

func countPayments(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&n).Error)
	return n
}

func loadInvoice(t *testing.T, db *gorm.DB, number string) models.Invoice {
	t.Helper()
	var inv models.Invoice
	require.NoError(t, db.First(&inv, "invoice_number = ?", number).Error)
	return inv
}

func loadStudent(t *testing.T, db *gorm.DB, id string) models.Student {
	t.Helper()
	var s models.Student
	require.NoError(t, db.First(&s, "id = ?", id).Error)
	return s
}
