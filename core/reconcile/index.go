package reconcile

import (
	"context"
	"fmt"

	"payment-integrator/core/models"

	"gorm.io/gorm"
)

// LoadReferenceIndex reads the (method, receipt_number) pair of every ledger payment
// and returns the set of composite keys.
// Keys are built with models.PaymentKey so they match Candidate.Key exactly.
func LoadReferenceIndex(ctx context.Context, db *gorm.DB) (KeySet, error) {
	if db == nil {
		return KeySet{}, fmt.Errorf("ledger store is not connected")
	}

	rows, err := db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("method", "receipt_number").
		Rows()
	if err != nil {
		return KeySet{}, fmt.Errorf("failed to query ledger payments: %w", err)
	}
	defer rows.Close()

	index := make(KeySet)
	for rows.Next() {
		var method, receipt string
		if err := rows.Scan(&method, &receipt); err != nil {
			return KeySet{}, fmt.Errorf("failed to scan ledger payment key: %w", err)
		}
		index.Add(models.PaymentKey(method, receipt))
	}
	if err := rows.Err(); err != nil {
		return KeySet{}, fmt.Errorf("failed to read ledger payments: %w", err)
	}

	return index, nil
}
