package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payment-integrator/core/models"

	"gorm.io/gorm"
)

const defaultBatchSize = 500

// LedgerWriter inserts accepted payments into the ledger.
type LedgerWriter struct {
	batchSize int
}

// NewLedgerWriter creates a writer that splits inserts into statements of batchSize rows.
func NewLedgerWriter(batchSize int) *LedgerWriter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &LedgerWriter{batchSize: batchSize}
}

// InsertAll writes every accepted candidate inside a single transaction.
// Either all rows are committed or none: a uniqueness violation yields
// ErrDuplicatePayment, any other failure is wrapped and returned, and in both
// cases the transaction is rolled back.
func (w *LedgerWriter) InsertAll(ctx context.Context, db *gorm.DB, accepted []Candidate, now time.Time) (int, error) {
	if len(accepted) == 0 {
		return 0, nil
	}
	if db == nil {
		return 0, fmt.Errorf("ledger store is not connected")
	}

	rows := make([]models.Payment, 0, len(accepted))
	for _, c := range accepted {
		rows = append(rows, c.Payment(now))
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(rows); start += w.batchSize {
			end := start + w.batchSize
			if end > len(rows) {
				end = len(rows)
			}
			batch := rows[start:end]
			if err := tx.Create(&batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsDuplicateKey(err) {
			return 0, fmt.Errorf("%w: %v", ErrDuplicatePayment, err)
		}
		return 0, fmt.Errorf("failed to insert payments: %w", err)
	}

	return len(rows), nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Translated gorm errors are preferred; driver messages are matched for connections
// opened without error translation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicatePayment) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "duplicate entry")
}
