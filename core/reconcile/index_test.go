package reconcile

import (
	"context"
	"testing"

	"payment-integrator/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReferenceIndex(t *testing.T) {
	db, _ := openLedger(t)

	rows := []models.Payment{
		ledgerPayment("xendit", "1", "INV-1", "100"),
		ledgerPayment("BCA 1111", "R-9", "INV-1", "50"),
	}
	require.NoError(t, db.Create(&rows).Error)

	index, err := LoadReferenceIndex(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len())
	assert.True(t, index.Has("xendit:1"))
	assert.True(t, index.Has("BCA 1111:R-9"))
	assert.False(t, index.Has("paperid:1"))
}

func TestLoadReferenceIndex_Empty(t *testing.T) {
	db, _ := openLedger(t)

	index, err := LoadReferenceIndex(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 0, index.Len())
}

func TestLoadReferenceIndex_Failures(t *testing.T) {
	t.Run("Nil Store", func(t *testing.T) {
		index, err := LoadReferenceIndex(context.Background(), nil)
		assert.Error(t, err)
		assert.NotNil(t, index)
		assert.Equal(t, 0, index.Len())
	})

	t.Run("Missing Table", func(t *testing.T) {
		db, _ := openStore(t, "empty.db")
		index, err := LoadReferenceIndex(context.Background(), db)
		assert.Error(t, err)
		assert.Equal(t, 0, index.Len())
	})
}
