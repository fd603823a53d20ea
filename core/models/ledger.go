package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is a row of the ledger's students table.
type Student struct {
	ID          string          `gorm:"primaryKey;column:id;type:varchar(64)" json:"id"`
	Name        string          `gorm:"column:name;type:varchar(255)" json:"name"`
	Email       string          `gorm:"column:email;type:varchar(255)" json:"email"`
	Balance     decimal.Decimal `gorm:"column:balance;type:decimal(20,2);default:0" json:"balance"`
	LastUpdated *time.Time      `gorm:"column:last_updated" json:"last_updated,omitempty"`
}

func (Student) TableName() string {
	return "students"
}

// Invoice is a receivable in the ledger.
// It is only mutated by the cascade and never deleted.
type Invoice struct {
	InvoiceNumber string          `gorm:"primaryKey;column:invoice_number;type:varchar(64)" json:"invoice_number"`
	StudentID     string          `gorm:"column:student_id;type:varchar(64);index" json:"student_id"`
	IssueDate     time.Time       `gorm:"column:issue_date" json:"issue_date"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(20,2)" json:"total"`
	PaidAmount    decimal.Decimal `gorm:"column:paid_amount;type:decimal(20,2);default:0" json:"paid_amount"`
	Status        InvoiceStatus   `gorm:"column:status;type:varchar(20)" json:"status"`
	LastUpdated   time.Time       `gorm:"column:last_updated;index" json:"last_updated"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// Outstanding returns total minus paid-to-date. Negative values mean overpayment.
func (i Invoice) Outstanding() decimal.Decimal {
	return i.Total.Sub(i.PaidAmount)
}

// Payment is a receipt recorded in the ledger.
// Rows are immutable once written.
type Payment struct {
	ID            uint            `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	StudentID     string          `gorm:"column:student_id;type:varchar(64);index" json:"student_id"`
	PaymentDate   time.Time       `gorm:"column:payment_date" json:"payment_date"`
	InvoiceNumber string          `gorm:"column:invoice_number;type:varchar(64);index" json:"invoice_number"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(20,2)" json:"amount"`
	Method        string          `gorm:"column:method;type:varchar(64);uniqueIndex:idx_payments_key,priority:1" json:"method"`
	ReceiptNumber string          `gorm:"column:receipt_number;type:varchar(128);uniqueIndex:idx_payments_key,priority:2" json:"receipt_number"`
	LastUpdated   time.Time       `gorm:"column:last_updated" json:"last_updated"`
}

func (Payment) TableName() string {
	return "payments"
}

// Key returns the composite deduplication key of the payment.
func (p Payment) Key() string {
	return PaymentKey(p.Method, p.ReceiptNumber)
}

// PaymentKey builds the composite "method:receipt" key.
// Every component that compares payments must build keys through this function.
func PaymentKey(method, receiptNumber string) string {
	return method + ":" + receiptNumber
}
