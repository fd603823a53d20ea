package reconcile

import (
	"context"
	"fmt"
	"time"

	"payment-integrator/core/models"
	"payment-integrator/core/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CascadeStep is one derived-data refresh run after payments are inserted.
// Each step commits on its own; a failing step does not undo earlier ones.
type CascadeStep struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB, now time.Time) error
}

// Cascade runs the derived-data refresh on the ledger.
type Cascade struct {
	logger *zap.Logger
	loc    *time.Location
	steps  []CascadeStep
}

// NewCascade creates the default three-step cascade.
// loc decides the calendar day used by the paid-amount refresh.
func NewCascade(logger *zap.Logger, loc *time.Location) *Cascade {
	if loc == nil {
		loc = time.Local
	}
	c := &Cascade{logger: logger, loc: loc}
	c.steps = []CascadeStep{
		{Name: "recalculate_paid_amounts", Run: c.recalculatePaidAmounts},
		{Name: "refresh_invoice_statuses", Run: RefreshInvoiceStatuses},
		{Name: "refresh_student_balances", Run: RefreshStudentBalances},
	}
	return c
}

// Steps returns the configured steps in execution order.
func (c *Cascade) Steps() []CascadeStep {
	return c.steps
}

// Run executes every step in order against db.
// Failures are logged, counted in stats and returned; they never stop later steps.
func (c *Cascade) Run(ctx context.Context, db *gorm.DB, now time.Time, stats *Stats) []RunError {
	var errs []RunError
	for _, step := range c.steps {
		if err := step.Run(ctx, db, now); err != nil {
			c.logger.Error("Cascade step failed", zap.String("step", step.Name), zap.Error(err))
			stats.Errors++
			errs = append(errs, RunError{Stage: StateCascade, Source: step.Name, Message: err.Error()})
			continue
		}
		c.logger.Debug("Cascade step completed", zap.String("step", step.Name))
	}
	return errs
}

func (c *Cascade) recalculatePaidAmounts(ctx context.Context, db *gorm.DB, now time.Time) error {
	return RecalculatePaidAmounts(ctx, db, now, c.loc)
}

// DayBounds returns the start of the calendar day containing t in loc and the start of the next one.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// RecalculatePaidAmounts sets paid_amount to the sum of the invoice's ledger payments,
// for invoices last updated on the calendar day of now in loc.
// The bounds are bound in UTC; ledger timestamps are written in UTC.
func RecalculatePaidAmounts(ctx context.Context, db *gorm.DB, now time.Time, loc *time.Location) error {
	if db == nil {
		return fmt.Errorf("ledger store is not connected")
	}
	start, end := DayBounds(now, loc)

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`UPDATE invoices
			SET paid_amount = COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.invoice_number = invoices.invoice_number), 0)
			WHERE last_updated >= ? AND last_updated < ?`, start.UTC(), end.UTC()).Error
		if err != nil {
			return fmt.Errorf("failed to recalculate paid amounts: %w", err)
		}
		return nil
	})
}

// sqlTime scans timestamps that some drivers return as text from aggregates.
type sqlTime struct {
	Time  time.Time
	Valid bool
}

func (t *sqlTime) Scan(value any) error {
	if value == nil {
		t.Time, t.Valid = time.Time{}, false
		return nil
	}
	parsed, err := utils.ToTime(value, time.UTC)
	if err != nil {
		return err
	}
	t.Time, t.Valid = parsed.UTC(), true
	return nil
}

// paymentTotal is the per-invoice payment aggregate.
type paymentTotal struct {
	Paid        decimal.Decimal
	LastPayment sqlTime
}

// loadPaymentTotals sums ledger payments per invoice.
func loadPaymentTotals(tx *gorm.DB) (map[string]paymentTotal, error) {
	rows, err := tx.Raw(`SELECT invoice_number, SUM(amount), MAX(payment_date)
		FROM payments GROUP BY invoice_number`).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]paymentTotal)
	for rows.Next() {
		var (
			invoice string
			total   paymentTotal
		)
		if err := rows.Scan(&invoice, &total.Paid, &total.LastPayment); err != nil {
			return nil, fmt.Errorf("failed to scan payment aggregate: %w", err)
		}
		totals[invoice] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payment aggregates: %w", err)
	}
	return totals, nil
}

// RefreshInvoiceStatuses recomputes paid_amount and status of every invoice from
// its ledger payments. Invoices with payments get last_updated set to their latest
// payment date; invoices without payments keep their last_updated.
// Only changed rows are written.
func RefreshInvoiceStatuses(ctx context.Context, db *gorm.DB, _ time.Time) error {
	if db == nil {
		return fmt.Errorf("ledger store is not connected")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byInvoice, err := loadPaymentTotals(tx)
		if err != nil {
			return err
		}

		var invoices []models.Invoice
		if err := tx.Find(&invoices).Error; err != nil {
			return fmt.Errorf("failed to load invoices: %w", err)
		}

		for _, inv := range invoices {
			paid := decimal.Zero
			total, hasPayments := byInvoice[inv.InvoiceNumber]
			if hasPayments {
				paid = total.Paid
			}
			status := models.StatusFor(inv.Total, paid)

			updates := map[string]any{}
			if !inv.PaidAmount.Equal(paid) {
				updates["paid_amount"] = paid
			}
			if inv.Status != status {
				updates["status"] = string(status)
			}
			if hasPayments && total.LastPayment.Valid && !inv.LastUpdated.Equal(total.LastPayment.Time) {
				updates["last_updated"] = total.LastPayment.Time
			}
			if len(updates) == 0 {
				continue
			}

			err := tx.Model(&models.Invoice{}).
				Where("invoice_number = ?", inv.InvoiceNumber).
				Updates(updates).Error
			if err != nil {
				return fmt.Errorf("failed to update invoice %s: %w", inv.InvoiceNumber, err)
			}
		}
		return nil
	})
}

// RefreshStudentBalances sets each student's balance to the outstanding amount
// summed over all of their invoices and stamps last_updated with now.
// Students without invoices are left untouched.
func RefreshStudentBalances(ctx context.Context, db *gorm.DB, now time.Time) error {
	if db == nil {
		return fmt.Errorf("ledger store is not connected")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`UPDATE students
			SET balance = (SELECT COALESCE(SUM(i.total - i.paid_amount), 0) FROM invoices i WHERE i.student_id = students.id),
				last_updated = ?
			WHERE EXISTS (SELECT 1 FROM invoices i WHERE i.student_id = students.id)`, now.UTC()).Error
		if err != nil {
			return fmt.Errorf("failed to refresh student balances: %w", err)
		}
		return nil
	})
}
