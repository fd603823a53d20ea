package dashboard

import (
	"testing"
	"time"

	"payment-integrator/core/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func invoice(number, student string, ageDays int, total, paid string) models.Invoice {
	return models.Invoice{
		InvoiceNumber: number,
		StudentID:     student,
		IssueDate:     now.AddDate(0, 0, -ageDays),
		Total:         d(total),
		PaidAmount:    d(paid),
	}
}

func payment(student, method string, ageDays int, amount string) models.Payment {
	return models.Payment{StudentID: student, Method: method, PaymentDate: now.AddDate(0, 0, -ageDays), Amount: d(amount)}
}

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Students: []models.Student{{ID: "S1", Name: "Ana"}, {ID: "S2", Name: "Budi"}, {ID: "S3", Name: "Citra"}},
		Invoices: []models.Invoice{
			invoice("INV-1", "S1", 10, "1000", "1000"),
			invoice("INV-2", "S1", 45, "1000", "1200"),
			invoice("INV-3", "S2", 100, "1000", "400"),
			invoice("INV-4", "S3", 200, "1000", "0"),
		},
		Payments: []models.Payment{
			payment("S1", "xendit", 9, "1000"),
			payment("S1", "BCA 1111", 40, "1200"),
			payment("S2", "xendit", 5, "400"),
		},
	}
}

func TestView_Summary(t *testing.T) {
	s := Filter{}.Apply(sampleSnapshot()).Summary()

	assert.Equal(t, 4, s.Invoices)
	assert.True(t, s.TotalInvoiced.Equal(d("4000")))
	assert.True(t, s.TotalPaid.Equal(d("2600")))
	assert.True(t, s.TotalOutstanding.Equal(d("1600")))
	assert.True(t, s.TotalOverpaid.Equal(d("200")))
}

func TestView_StatusCounts(t *testing.T) {
	counts := Filter{}.Apply(sampleSnapshot()).StatusCounts()

	got := map[models.InvoiceStatus]int{}
	for _, c := range counts {
		got[c.Status] = c.Count
	}
	assert.Equal(t, map[models.InvoiceStatus]int{
		models.StatusPaid:          1,
		models.StatusOverpaid:      1,
		models.StatusPartiallyPaid: 1,
		models.StatusUnpaid:        1,
	}, got)
	assert.Len(t, counts, len(models.Statuses))
}

func TestView_Aging(t *testing.T) {
	buckets := Filter{}.Apply(sampleSnapshot()).Aging(now)

	require.Len(t, buckets, 5)
	assert.Equal(t, "0-30", buckets[0].Label)
	assert.Equal(t, 0, buckets[0].Invoices)
	assert.Equal(t, "91-120", buckets[3].Label)
	assert.Equal(t, 1, buckets[3].Invoices)
	assert.True(t, buckets[3].Outstanding.Equal(d("600")))
	assert.Equal(t, "120+", buckets[4].Label)
	assert.True(t, buckets[4].Outstanding.Equal(d("1000")))
}

func TestView_Overpaid(t *testing.T) {
	over := Filter{}.Apply(sampleSnapshot()).Overpaid()

	require.Len(t, over, 1)
	assert.Equal(t, "S1", over[0].StudentID)
	assert.Equal(t, "Ana", over[0].Name)
	assert.True(t, over[0].Amount.Equal(d("200")))
}

func TestView_TopOutstanding(t *testing.T) {
	top := Filter{}.Apply(sampleSnapshot()).TopOutstanding(2)

	require.Len(t, top, 2)
	assert.Equal(t, "S3", top[0].StudentID)
	assert.Equal(t, "S2", top[1].StudentID)
}

func TestView_Methods(t *testing.T) {
	methods := Filter{}.Apply(sampleSnapshot()).Methods()

	require.Len(t, methods, 2)
	assert.Equal(t, "xendit", methods[0].Method)
	assert.Equal(t, 2, methods[0].Payments)
	assert.True(t, methods[0].Amount.Equal(d("1400")))
	assert.Equal(t, "BCA 1111", methods[1].Method)
}

func TestFilter_Apply(t *testing.T) {
	t.Run("Student", func(t *testing.T) {
		v := Filter{StudentID: "S1"}.Apply(sampleSnapshot())
		assert.Len(t, v.Invoices, 2)
		assert.Len(t, v.Payments, 2)
	})

	t.Run("Invoice Dates Inclusive", func(t *testing.T) {
		day := time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC)
		v := Filter{InvoiceFrom: day, InvoiceTo: day}.Apply(sampleSnapshot())
		require.Len(t, v.Invoices, 1)
		assert.Equal(t, "INV-1", v.Invoices[0].InvoiceNumber)
		assert.Len(t, v.Payments, 3)
	})

	t.Run("Methods Only Narrow Payments", func(t *testing.T) {
		v := Filter{Methods: []string{"BCA 1111"}}.Apply(sampleSnapshot())
		assert.Len(t, v.Invoices, 4)
		require.Len(t, v.Payments, 1)
		assert.Equal(t, "BCA 1111", v.Payments[0].Method)
	})

	t.Run("Payment Dates", func(t *testing.T) {
		v := Filter{PaymentFrom: now.AddDate(0, 0, -10)}.Apply(sampleSnapshot())
		assert.Len(t, v.Payments, 2)
	})
}

func TestView_Empty(t *testing.T) {
	v := Filter{}.Apply(&Snapshot{})

	assert.True(t, v.Summary().TotalInvoiced.IsZero())
	assert.Empty(t, v.Overpaid())
	assert.Empty(t, v.Methods())
	assert.NotNil(t, v.Methods())
}
