package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies an external payment gateway.
// Its value is also the payment method recorded in the ledger.
type Source string

const (
	SourceXendit  Source = "xendit"
	SourcePaperID Source = "paperid"
)

// Sources lists the supported gateways in reconciliation order.
var Sources = []Source{SourceXendit, SourcePaperID}

// IsValid reports whether s is a known gateway.
func (s Source) IsValid() bool {
	switch s {
	case SourceXendit, SourcePaperID:
		return true
	default:
		return false
	}
}

// XenditPayment is a row of the Xendit gateway's payments table.
type XenditPayment struct {
	XenditPaymentID string          `gorm:"primaryKey;column:xendit_payment_id;type:varchar(128)"`
	InvoiceNumber   string          `gorm:"column:invoice_number;type:varchar(64)"`
	PaymentDate     time.Time       `gorm:"column:payment_date"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(20,2)"`
	StudentID       string          `gorm:"column:student_id;type:varchar(64)"`
}

func (XenditPayment) TableName() string {
	return "payments"
}

// PaperIDPayment is a row of the Paper.id gateway's payments table.
type PaperIDPayment struct {
	PaperPaymentID string          `gorm:"primaryKey;column:paper_payment_id;type:varchar(128)"`
	InvoiceNumber  string          `gorm:"column:invoice_number;type:varchar(64)"`
	PaymentDate    time.Time       `gorm:"column:payment_date"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(20,2)"`
	StudentID      string          `gorm:"column:student_id;type:varchar(64)"`
}

func (PaperIDPayment) TableName() string {
	return "payments"
}
