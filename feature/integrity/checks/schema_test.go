package checks

import (
	"path/filepath"
	"testing"

	"payment-integrator/core/database"
	"payment-integrator/core/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil, "ledger", models.Payment{})
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_ModelWithoutTableName(t *testing.T) {
	db, _ := setupMockDB(t)
	type anonymous struct {
		ID int `gorm:"column:id"`
	}
	_, err := CheckSchema(db, "ledger", anonymous{})
	assert.Error(t, err)
}

func TestCheckSchema_MySQL_MissingAndMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("xendit_payment_id", "varchar(128)", "NO", "PRI", nil, "").
		AddRow("invoice_number", "int(11)", "YES", "", nil, "").
		AddRow("payment_date", "datetime", "YES", "", nil, "").
		AddRow("amount", "decimal(20,2)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `payments`").WillReturnRows(rows)

	report, err := CheckSchema(db, "xendit", models.XenditPayment{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, "xendit", report.Store)

	tbl, ok := report.Tables["payments"]
	require.True(t, ok)
	assert.Equal(t, "error", tbl.Status)
	assert.Equal(t, []string{"student_id"}, tbl.MissingColumns)
	require.Len(t, tbl.TypeMismatches, 1)
	assert.Contains(t, tbl.TypeMismatches[0], "invoice_number")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckSchema_SQLite(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Invoice{}))

	report, err := CheckSchema(db, "ledger", models.Student{}, models.Invoice{}, &models.Payment{})
	require.NoError(t, err)

	assert.False(t, report.Matched)
	assert.Equal(t, "ok", report.Tables["students"].Status)
	assert.Equal(t, "ok", report.Tables["invoices"].Status)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "payments")
}

func TestTypeMatches(t *testing.T) {
	assert.True(t, typeMatches("varchar(64)", "character varying"))
	assert.True(t, typeMatches("decimal(20,2)", "numeric"))
	assert.True(t, typeMatches("decimal(20,2)", "decimal(20,2)"))
	assert.False(t, typeMatches("decimal(20,2)", "int(11)"))
}
