package reconcile

import (
	"context"
	"fmt"

	"payment-integrator/core/models"

	"gorm.io/gorm"
)

// Reader fetches candidate payments from one gateway store.
// Implementations must only read from the store.
type Reader interface {
	Source() models.Source
	Fetch(ctx context.Context, db *gorm.DB) ([]Candidate, error)
}

// xenditReader reads the Xendit payments table.
type xenditReader struct{}

func (xenditReader) Source() models.Source { return models.SourceXendit }

func (r xenditReader) Fetch(ctx context.Context, db *gorm.DB) ([]Candidate, error) {
	if db == nil {
		return nil, fmt.Errorf("%s store is not connected", r.Source())
	}

	var rows []models.XenditPayment
	if err := db.WithContext(ctx).Order("payment_date, xendit_payment_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s payments: %w", r.Source(), err)
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, Candidate{
			Source:        r.Source(),
			PaymentID:     row.XenditPaymentID,
			InvoiceNumber: row.InvoiceNumber,
			StudentID:     row.StudentID,
			Date:          row.PaymentDate,
			Amount:        row.Amount,
		})
	}
	return candidates, nil
}

// paperIDReader reads the Paper.id payments table.
type paperIDReader struct{}

func (paperIDReader) Source() models.Source { return models.SourcePaperID }

func (r paperIDReader) Fetch(ctx context.Context, db *gorm.DB) ([]Candidate, error) {
	if db == nil {
		return nil, fmt.Errorf("%s store is not connected", r.Source())
	}

	var rows []models.PaperIDPayment
	if err := db.WithContext(ctx).Order("payment_date, paper_payment_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s payments: %w", r.Source(), err)
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, Candidate{
			Source:        r.Source(),
			PaymentID:     row.PaperPaymentID,
			InvoiceNumber: row.InvoiceNumber,
			StudentID:     row.StudentID,
			Date:          row.PaymentDate,
			Amount:        row.Amount,
		})
	}
	return candidates, nil
}

// ReaderFor returns the reader of a gateway.
func ReaderFor(source models.Source) (Reader, error) {
	switch source {
	case models.SourceXendit:
		return xenditReader{}, nil
	case models.SourcePaperID:
		return paperIDReader{}, nil
	default:
		return nil, fmt.Errorf("unknown payment source: %s", source)
	}
}

// DefaultReaders returns a reader for every supported gateway, in reconciliation order.
func DefaultReaders() []Reader {
	readers := make([]Reader, 0, len(models.Sources))
	for _, src := range models.Sources {
		r, _ := ReaderFor(src)
		readers = append(readers, r)
	}
	return readers
}
