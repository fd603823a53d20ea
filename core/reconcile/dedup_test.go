package reconcile

import (
	"testing"

	"payment-integrator/core/models"

	"github.com/stretchr/testify/assert"
)

func candidate(src models.Source, id string) Candidate {
	return Candidate{Source: src, PaymentID: id, InvoiceNumber: "INV-1", StudentID: "S1", Date: testNow, Amount: dec("10")}
}

func TestCandidateKey_MatchesLedgerKey(t *testing.T) {
	c := candidate(models.SourceXendit, "X-77")
	p := c.Payment(testNow)

	assert.Equal(t, p.Key(), c.Key())
	assert.Equal(t, "xendit:X-77", c.Key())
	assert.Equal(t, "xendit", p.Method)
	assert.Equal(t, "X-77", p.ReceiptNumber)
	assert.Equal(t, testNow, p.LastUpdated)
}

func TestDedup(t *testing.T) {
	index := KeySet{}
	index.Add("xendit:1")
	stats := NewStats()

	accepted := Dedup([]Candidate{
		candidate(models.SourceXendit, "1"),
		candidate(models.SourceXendit, "2"),
		candidate(models.SourcePaperID, "1"),
	}, index, stats)

	assert.Len(t, accepted, 2)
	assert.Equal(t, "xendit:2", accepted[0].Key())
	assert.Equal(t, "paperid:1", accepted[1].Key())
	assert.Equal(t, 1, stats.Skipped[models.SourceXendit])
	assert.Equal(t, 0, stats.Skipped[models.SourcePaperID])
	assert.True(t, index.Has("xendit:2"))
	assert.True(t, index.Has("paperid:1"))
}

func TestDedup_WithinBatch(t *testing.T) {
	stats := NewStats()

	accepted := Dedup([]Candidate{
		candidate(models.SourcePaperID, "P1"),
		candidate(models.SourcePaperID, "P1"),
	}, KeySet{}, stats)

	assert.Len(t, accepted, 1)
	assert.Equal(t, 1, stats.Skipped[models.SourcePaperID])
	assert.Equal(t, 1, stats.TotalSkipped())
}

func TestDedup_SameIDDifferentGateways(t *testing.T) {
	accepted := Dedup([]Candidate{
		candidate(models.SourceXendit, "1"),
		candidate(models.SourcePaperID, "1"),
	}, KeySet{}, NewStats())

	assert.Len(t, accepted, 2)
}
