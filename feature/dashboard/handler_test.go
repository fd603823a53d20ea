package dashboard

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"payment-integrator/core/database"
	"payment-integrator/core/models"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLedger(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Invoice{}, &models.Payment{}))

	snap := sampleSnapshot()
	require.NoError(t, db.Create(&snap.Students).Error)
	require.NoError(t, db.Create(&snap.Invoices).Error)
	for i := range snap.Payments {
		snap.Payments[i].ReceiptNumber = string(rune('A' + i))
		snap.Payments[i].InvoiceNumber = "INV-1"
	}
	require.NoError(t, db.Create(&snap.Payments).Error)
	return db
}

func setupApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	f := NewFeature(db, time.Minute, zap.NewNop())
	f.service.clock = func() time.Time { return now }
	require.True(t, f.IsEnabled())
	require.NoError(t, f.Load(app))
	return app
}

func get(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHandler_Summary(t *testing.T) {
	app := setupApp(t, setupLedger(t))

	status, body := get(t, app, "/dashboard/summary")
	require.Equal(t, http.StatusOK, status)

	var s Summary
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, 4, s.Invoices)
	assert.True(t, s.TotalOutstanding.Equal(d("1600")))
}

func TestHandler_Filters(t *testing.T) {
	app := setupApp(t, setupLedger(t))

	status, body := get(t, app, "/dashboard/methods?method=xendit&student=S1")
	require.Equal(t, http.StatusOK, status)

	var methods []MethodTotal
	require.NoError(t, json.Unmarshal(body, &methods))
	require.Len(t, methods, 1)
	assert.Equal(t, "xendit", methods[0].Method)
	assert.True(t, methods[0].Amount.Equal(d("1000")))
}

func TestHandler_Outstanding(t *testing.T) {
	app := setupApp(t, setupLedger(t))

	status, body := get(t, app, "/dashboard/outstanding?limit=1")
	require.Equal(t, http.StatusOK, status)

	var top []StudentAmount
	require.NoError(t, json.Unmarshal(body, &top))
	require.Len(t, top, 1)
	assert.Equal(t, "S3", top[0].StudentID)
	assert.Equal(t, "Citra", top[0].Name)

	status, _ = get(t, app, "/dashboard/outstanding?limit=0")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_StatusAndAging(t *testing.T) {
	app := setupApp(t, setupLedger(t))

	status, body := get(t, app, "/dashboard/status")
	require.Equal(t, http.StatusOK, status)
	var counts []StatusCount
	require.NoError(t, json.Unmarshal(body, &counts))
	assert.Len(t, counts, 4)

	status, body = get(t, app, "/dashboard/aging")
	require.Equal(t, http.StatusOK, status)
	var buckets []AgingBucket
	require.NoError(t, json.Unmarshal(body, &buckets))
	assert.Len(t, buckets, 5)

	status, body = get(t, app, "/dashboard/overpaid")
	require.Equal(t, http.StatusOK, status)
	var over []StudentAmount
	require.NoError(t, json.Unmarshal(body, &over))
	assert.Len(t, over, 1)
}

func TestHandler_InvalidDate(t *testing.T) {
	app := setupApp(t, setupLedger(t))

	status, body := get(t, app, "/dashboard/summary?invoice_from=18-10-2026")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "invoice_from")
}

func TestHandler_LoadError(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: filepath.Join(t.TempDir(), "empty.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	status, _ := get(t, setupApp(t, db), "/dashboard/summary")
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestHandler_Refresh(t *testing.T) {
	db := setupLedger(t)
	app := setupApp(t, db)

	_, body := get(t, app, "/dashboard/summary")
	var before Summary
	require.NoError(t, json.Unmarshal(body, &before))

	extra := invoice("INV-5", "S2", 1, "500", "0")
	require.NoError(t, db.Create(&extra).Error)

	// cached
	_, body = get(t, app, "/dashboard/summary")
	var cached Summary
	require.NoError(t, json.Unmarshal(body, &cached))
	assert.Equal(t, before.Invoices, cached.Invoices)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/dashboard/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = get(t, app, "/dashboard/summary")
	var after Summary
	require.NoError(t, json.Unmarshal(body, &after))
	assert.Equal(t, before.Invoices+1, after.Invoices)
}
