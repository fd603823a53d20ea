package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"payment-integrator/core/models"
	"payment-integrator/core/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kind names an importable CSV layout.
type Kind string

const (
	KindStudents       Kind = "students"
	KindInvoices       Kind = "invoices"
	KindLedgerPayments Kind = "payments"
	KindXendit         Kind = Kind(models.SourceXendit)
	KindPaperID        Kind = Kind(models.SourcePaperID)
)

// RowError describes a row that could not be imported.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report counts the outcome of one file.
type Report struct {
	Kind     Kind       `json:"kind"`
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors,omitempty"`
}

type rowOutcome int

const (
	rowInserted rowOutcome = iota
	rowSkipped
)

// Service imports CSV files.
type Service struct {
	cfg     Config
	methods map[string]struct{}
	loc     *time.Location
	clock   func() time.Time
	logger  *zap.Logger
}

// NewService creates an importer. Dates without a zone are read in loc.
func NewService(cfg Config, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	methods := make(map[string]struct{}, len(cfg.LedgerMethods))
	for _, m := range cfg.LedgerMethods {
		methods[strings.TrimSpace(m)] = struct{}{}
	}
	return &Service{cfg: cfg, methods: methods, loc: loc, clock: time.Now, logger: logger}
}

// Import loads one file of the given kind into db.
// A file-level failure (unreadable header) is returned; row failures are counted in the report.
func (s *Service) Import(ctx context.Context, db *gorm.DB, kind Kind, r io.Reader) (*Report, error) {
	var handle func(ctx context.Context, db *gorm.DB, rec record) (rowOutcome, error)
	switch kind {
	case KindStudents:
		handle = s.importStudent
	case KindInvoices:
		handle = s.importInvoice
	case KindLedgerPayments:
		handle = s.importLedgerPayment
	case KindXendit:
		handle = s.importXenditPayment
	case KindPaperID:
		handle = s.importPaperIDPayment
	default:
		return nil, fmt.Errorf("unknown import kind: %s", kind)
	}
	if db == nil {
		return nil, fmt.Errorf("store is not connected")
	}

	report := &Report{Kind: kind}
	log := s.logger.With(zap.String("kind", string(kind)))

	err := readRecords(r, s.cfg.Delimiter, func(rec record, err error) {
		if err == nil {
			var outcome rowOutcome
			outcome, err = handle(ctx, db.WithContext(ctx), rec)
			if err == nil {
				switch outcome {
				case rowInserted:
					report.Inserted++
				case rowSkipped:
					report.Skipped++
				}
				return
			}
		}
		report.Failed++
		report.Errors = append(report.Errors, RowError{Line: rec.line, Message: err.Error()})
		log.Warn("Failed to import row", zap.Int("line", rec.line), zap.Error(err))
	})
	if err != nil {
		return nil, err
	}

	log.Info("Import finished",
		zap.Int("inserted", report.Inserted),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// exists reports whether model has a row matching query.
func exists(db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check existing row: %w", err)
	}
	return n > 0, nil
}

func (s *Service) importStudent(_ context.Context, db *gorm.DB, rec record) (rowOutcome, error) {
	id, err := rec.get("id_student")
	if err != nil {
		return 0, err
	}
	name, err := rec.get("name")
	if err != nil {
		return 0, err
	}
	email, err := rec.get("email")
	if err != nil {
		return 0, err
	}
	if id == "" {
		return 0, fmt.Errorf("empty id_student")
	}

	found, err := exists(db, &models.Student{}, "id = ?", id)
	if err != nil || found {
		return rowSkipped, err
	}
	if err := db.Create(&models.Student{ID: id, Name: name, Email: email}).Error; err != nil {
		return 0, fmt.Errorf("failed to insert student %s: %w", id, err)
	}
	return rowInserted, nil
}

func (s *Service) importInvoice(_ context.Context, db *gorm.DB, rec record) (rowOutcome, error) {
	number, err := rec.get("nomor_invoice")
	if err != nil {
		return 0, err
	}
	studentID, err := rec.get("id_student")
	if err != nil {
		return 0, err
	}
	date, err := s.date(rec, "tanggal")
	if err != nil {
		return 0, err
	}
	total, err := s.amount(rec, "total")
	if err != nil {
		return 0, err
	}
	rawStatus, err := rec.get("status")
	if err != nil {
		return 0, err
	}
	if number == "" {
		return 0, fmt.Errorf("empty nomor_invoice")
	}

	found, err := exists(db, &models.Invoice{}, "invoice_number = ?", number)
	if err != nil || found {
		return rowSkipped, err
	}

	invoice := models.Invoice{
		InvoiceNumber: number,
		StudentID:     studentID,
		IssueDate:     date,
		Total:         total,
		Status:        parseStatus(rawStatus, total),
		LastUpdated:   s.clock().UTC(),
	}
	if err := db.Create(&invoice).Error; err != nil {
		return 0, fmt.Errorf("failed to insert invoice %s: %w", number, err)
	}
	return rowInserted, nil
}

// parseStatus accepts a known status in any letter case and otherwise derives it
// from an unpaid total.
func parseStatus(raw string, total decimal.Decimal) models.InvoiceStatus {
	for _, st := range models.Statuses {
		if strings.EqualFold(raw, string(st)) {
			return st
		}
	}
	return models.StatusFor(total, decimal.Zero)
}

func (s *Service) importLedgerPayment(_ context.Context, db *gorm.DB, rec record) (rowOutcome, error) {
	method, err := rec.get("metode_pembayaran")
	if err != nil {
		return 0, err
	}
	if _, ok := s.methods[method]; !ok {
		return rowSkipped, nil
	}
	receipt, err := rec.get("nomor_penerimaan")
	if err != nil {
		return 0, err
	}
	studentID, err := rec.get("id_student")
	if err != nil {
		return 0, err
	}
	invoice, err := rec.get("nomor_invoice")
	if err != nil {
		return 0, err
	}
	date, err := s.date(rec, "tanggal")
	if err != nil {
		return 0, err
	}
	amount, err := s.amount(rec, "jumlah")
	if err != nil {
		return 0, err
	}
	if receipt == "" {
		return 0, fmt.Errorf("empty nomor_penerimaan")
	}

	found, err := exists(db, &models.Payment{}, "method = ? AND receipt_number = ?", method, receipt)
	if err != nil || found {
		return rowSkipped, err
	}

	payment := models.Payment{
		StudentID:     studentID,
		PaymentDate:   date,
		InvoiceNumber: invoice,
		Amount:        amount,
		Method:        method,
		ReceiptNumber: receipt,
		LastUpdated:   s.clock().UTC(),
	}
	if err := db.Create(&payment).Error; err != nil {
		return 0, fmt.Errorf("failed to insert payment %s: %w", payment.Key(), err)
	}
	return rowInserted, nil
}

// gatewayRow holds the columns shared by both gateway exports.
type gatewayRow struct {
	id        string
	invoice   string
	studentID string
	date      time.Time
	amount    decimal.Decimal
}

func (s *Service) readGatewayRow(rec record, idColumn string) (gatewayRow, error) {
	var row gatewayRow
	var err error
	if row.id, err = rec.get(idColumn); err != nil {
		return row, err
	}
	if row.invoice, err = rec.get("nomor_invoice"); err != nil {
		return row, err
	}
	if row.studentID, err = rec.get("id_student"); err != nil {
		return row, err
	}
	if row.date, err = s.date(rec, "tanggal"); err != nil {
		return row, err
	}
	if row.amount, err = s.amount(rec, "jumlah"); err != nil {
		return row, err
	}
	if row.id == "" {
		return row, fmt.Errorf("empty %s", idColumn)
	}
	return row, nil
}

func (s *Service) importXenditPayment(_ context.Context, db *gorm.DB, rec record) (rowOutcome, error) {
	row, err := s.readGatewayRow(rec, "id_xendit_payment")
	if err != nil {
		return 0, err
	}
	found, err := exists(db, &models.XenditPayment{}, "xendit_payment_id = ?", row.id)
	if err != nil || found {
		return rowSkipped, err
	}

	payment := models.XenditPayment{
		XenditPaymentID: row.id,
		InvoiceNumber:   row.invoice,
		PaymentDate:     row.date,
		Amount:          row.amount,
		StudentID:       row.studentID,
	}
	if err := db.Create(&payment).Error; err != nil {
		return 0, fmt.Errorf("failed to insert xendit payment %s: %w", row.id, err)
	}
	return rowInserted, nil
}

func (s *Service) importPaperIDPayment(_ context.Context, db *gorm.DB, rec record) (rowOutcome, error) {
	row, err := s.readGatewayRow(rec, "id_paper_payment")
	if err != nil {
		return 0, err
	}
	found, err := exists(db, &models.PaperIDPayment{}, "paper_payment_id = ?", row.id)
	if err != nil || found {
		return rowSkipped, err
	}

	payment := models.PaperIDPayment{
		PaperPaymentID: row.id,
		InvoiceNumber:  row.invoice,
		PaymentDate:    row.date,
		Amount:         row.amount,
		StudentID:      row.studentID,
	}
	if err := db.Create(&payment).Error; err != nil {
		return 0, fmt.Errorf("failed to insert paper.id payment %s: %w", row.id, err)
	}
	return rowInserted, nil
}

func (s *Service) date(rec record, column string) (time.Time, error) {
	raw, err := rec.get(column)
	if err != nil {
		return time.Time{}, err
	}
	t, err := utils.ToTime(raw, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", column, err)
	}
	return t.UTC(), nil
}

func (s *Service) amount(rec record, column string) (decimal.Decimal, error) {
	raw, err := rec.get(column)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := utils.ToDecimal(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %s: %w", column, err)
	}
	return d, nil
}

// ImportFile opens path and imports it as kind.
func (s *Service) ImportFile(ctx context.Context, db *gorm.DB, kind Kind, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return s.Import(ctx, db, kind, f)
}
