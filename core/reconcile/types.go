package reconcile

import (
	"errors"
	"time"

	"payment-integrator/core/models"

	"github.com/shopspring/decimal"
)

// ErrDuplicatePayment is returned when the ledger rejects an insert batch on its
// (method, receipt_number) uniqueness constraint.
var ErrDuplicatePayment = errors.New("duplicate payment in ledger")

// State is a stage of a reconciliation run.
type State string

const (
	StateInit    State = "init"
	StateFetch   State = "fetch"
	StateDedup   State = "dedup"
	StateInsert  State = "insert"
	StateCascade State = "cascade"
	StateReport  State = "report"
	StateDone    State = "done"
	StateAborted State = "aborted"
)

// Outcome summarizes how a run ended.
type Outcome string

const (
	// OutcomeIntegrated means new payments were inserted and the cascade ran.
	OutcomeIntegrated Outcome = "integrated"
	// OutcomeNothingToDo means every candidate was already in the ledger (or there were none).
	OutcomeNothingToDo Outcome = "nothing_to_do"
	// OutcomeFailed means the run aborted and nothing was committed to the ledger.
	OutcomeFailed Outcome = "failed"
)

// Candidate is a payment row read from a gateway during one run.
type Candidate struct {
	Source        models.Source   `json:"source"`
	PaymentID     string          `json:"payment_id"`
	InvoiceNumber string          `json:"invoice_number"`
	StudentID     string          `json:"student_id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
}

// Key returns the composite key the candidate will have once recorded in the ledger.
func (c Candidate) Key() string {
	return models.PaymentKey(string(c.Source), c.PaymentID)
}

// Payment maps the candidate to a ledger payment row.
// The gateway name becomes the payment method and the gateway id the receipt number.
// Timestamps are stored in UTC.
func (c Candidate) Payment(updated time.Time) models.Payment {
	return models.Payment{
		StudentID:     c.StudentID,
		PaymentDate:   c.Date.UTC(),
		InvoiceNumber: c.InvoiceNumber,
		Amount:        c.Amount,
		Method:        string(c.Source),
		ReceiptNumber: c.PaymentID,
		LastUpdated:   updated.UTC(),
	}
}

// KeySet is the set of composite payment keys known to the ledger.
type KeySet map[string]struct{}

// Has reports whether key is in the set.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key into the set.
func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

// Len returns the number of keys.
func (s KeySet) Len() int {
	return len(s)
}

// Stats are the counters of one run.
type Stats struct {
	// Processed is the number of payments inserted into the ledger.
	Processed int `json:"processed"`
	// Skipped counts candidates already present in the ledger, per gateway.
	Skipped map[models.Source]int `json:"skipped"`
	// Errors counts contained failures (source fetches, cascade steps).
	Errors int `json:"errors"`
}

// NewStats returns zeroed counters with an entry for every gateway.
func NewStats() *Stats {
	s := &Stats{Skipped: make(map[models.Source]int, len(models.Sources))}
	for _, src := range models.Sources {
		s.Skipped[src] = 0
	}
	return s
}

// TotalSkipped sums the per-gateway skip counters.
func (s *Stats) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// RunError is a failure recorded during a run.
type RunError struct {
	Stage   State  `json:"stage"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

// Result is the structured outcome of a run. Presentation is left to a Reporter.
type Result struct {
	RunID      string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	State      State      `json:"state"`
	Outcome    Outcome    `json:"outcome"`
	Path       []State    `json:"path"`
	Stats      Stats      `json:"stats"`
	Errors     []RunError `json:"errors"`
	// IndexDegraded is set when the reference index could not be loaded and
	// deduplication ran against an empty set.
	IndexDegraded bool `json:"index_degraded"`
	// Cause is the error that aborted the run.
	Cause error `json:"-"`
}

// Succeeded reports whether the run ended without aborting.
func (r *Result) Succeeded() bool {
	return r.State == StateDone
}
