package models

import "github.com/shopspring/decimal"

// InvoiceStatus is the settlement state of an invoice.
type InvoiceStatus string

const (
	StatusUnpaid        InvoiceStatus = "Unpaid"
	StatusPartiallyPaid InvoiceStatus = "Partially Paid"
	StatusPaid          InvoiceStatus = "Paid"
	StatusOverpaid      InvoiceStatus = "Overpaid"
)

// Statuses lists every status in display order.
var Statuses = []InvoiceStatus{StatusUnpaid, StatusPartiallyPaid, StatusPaid, StatusOverpaid}

// StatusFor derives the status of an invoice from its total and paid-to-date amount.
//
//	total - paid == 0  -> Paid
//	total - paid <  0  -> Overpaid
//	paid == 0          -> Unpaid
//	otherwise          -> Partially Paid
func StatusFor(total, paid decimal.Decimal) InvoiceStatus {
	outstanding := total.Sub(paid)
	switch {
	case outstanding.IsZero():
		return StatusPaid
	case outstanding.IsNegative():
		return StatusOverpaid
	case paid.IsZero():
		return StatusUnpaid
	default:
		return StatusPartiallyPaid
	}
}
