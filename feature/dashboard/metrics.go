package dashboard

import (
	"sort"
	"time"

	"payment-integrator/core/models"

	"github.com/shopspring/decimal"
)

// Filter narrows the snapshot before aggregation. Zero values disable a filter.
type Filter struct {
	StudentID   string
	InvoiceFrom time.Time
	InvoiceTo   time.Time
	PaymentFrom time.Time
	PaymentTo   time.Time
	Methods     []string
}

// inRange reports whether t falls on or between the calendar days of from and to.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// View is a filtered snapshot.
type View struct {
	Invoices []models.Invoice
	Payments []models.Payment
	names    map[string]string
}

// Apply filters snap. The student filter applies to invoices and payments; the
// method filter only to payments.
func (f Filter) Apply(snap *Snapshot) *View {
	v := &View{names: make(map[string]string, len(snap.Students))}
	for _, s := range snap.Students {
		v.names[s.ID] = s.Name
	}

	methods := make(map[string]struct{}, len(f.Methods))
	for _, m := range f.Methods {
		methods[m] = struct{}{}
	}

	for _, inv := range snap.Invoices {
		if f.StudentID != "" && inv.StudentID != f.StudentID {
			continue
		}
		if !inRange(inv.IssueDate, f.InvoiceFrom, f.InvoiceTo) {
			continue
		}
		v.Invoices = append(v.Invoices, inv)
	}
	for _, p := range snap.Payments {
		if f.StudentID != "" && p.StudentID != f.StudentID {
			continue
		}
		if !inRange(p.PaymentDate, f.PaymentFrom, f.PaymentTo) {
			continue
		}
		if len(methods) > 0 {
			if _, ok := methods[p.Method]; !ok {
				continue
			}
		}
		v.Payments = append(v.Payments, p)
	}
	return v
}

// Summary holds the headline totals of the filtered invoices.
type Summary struct {
	Invoices         int             `json:"invoices"`
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalOverpaid    decimal.Decimal `json:"total_overpaid"`
}

// Summary totals the invoices. Outstanding only counts positive balances and
// overpaid only negative ones.
func (v *View) Summary() Summary {
	s := Summary{
		Invoices:         len(v.Invoices),
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalOverpaid:    decimal.Zero,
	}
	for _, inv := range v.Invoices {
		s.TotalInvoiced = s.TotalInvoiced.Add(inv.Total)
		s.TotalPaid = s.TotalPaid.Add(inv.PaidAmount)
		out := inv.Outstanding()
		if out.IsPositive() {
			s.TotalOutstanding = s.TotalOutstanding.Add(out)
		} else if out.IsNegative() {
			s.TotalOverpaid = s.TotalOverpaid.Sub(out)
		}
	}
	return s
}

// StatusCount is the number of invoices in one status.
type StatusCount struct {
	Status models.InvoiceStatus `json:"status"`
	Count  int                  `json:"count"`
}

// StatusCounts counts invoices per status, derived from total and paid amount.
// Every status is listed, including empty ones.
func (v *View) StatusCounts() []StatusCount {
	counts := make(map[models.InvoiceStatus]int, len(models.Statuses))
	for _, inv := range v.Invoices {
		counts[models.StatusFor(inv.Total, inv.PaidAmount)]++
	}
	out := make([]StatusCount, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		out = append(out, StatusCount{Status: st, Count: counts[st]})
	}
	return out
}

// AgingBucket is the outstanding amount of invoices whose age falls in a range of days.
type AgingBucket struct {
	Label       string          `json:"label"`
	Invoices    int             `json:"invoices"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

var agingBuckets = []struct {
	label string
	upto  int
}{
	{"0-30", 30},
	{"31-60", 60},
	{"61-90", 90},
	{"91-120", 120},
	{"120+", -1},
}

// Aging buckets invoices with a positive outstanding amount by days since issue.
// Invoices dated after now are left out.
func (v *View) Aging(now time.Time) []AgingBucket {
	out := make([]AgingBucket, len(agingBuckets))
	for i, b := range agingBuckets {
		out[i] = AgingBucket{Label: b.label, Outstanding: decimal.Zero}
	}

	for _, inv := range v.Invoices {
		outstanding := inv.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		days := int(now.Sub(inv.IssueDate).Hours() / 24)
		if days < 0 {
			continue
		}
		for i, b := range agingBuckets {
			if b.upto < 0 || days < b.upto {
				out[i].Invoices++
				out[i].Outstanding = out[i].Outstanding.Add(outstanding)
				break
			}
		}
	}
	return out
}

// StudentAmount is an amount attributed to one student.
type StudentAmount struct {
	StudentID string          `json:"student_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

func (v *View) byStudent(amount func(models.Invoice) decimal.Decimal) []StudentAmount {
	totals := make(map[string]decimal.Decimal)
	for _, inv := range v.Invoices {
		cur, ok := totals[inv.StudentID]
		if !ok {
			cur = decimal.Zero
		}
		totals[inv.StudentID] = cur.Add(amount(inv))
	}

	out := make([]StudentAmount, 0, len(totals))
	for id, total := range totals {
		out = append(out, StudentAmount{StudentID: id, Name: v.names[id], Amount: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

// Overpaid lists students whose invoices were overpaid, largest first.
func (v *View) Overpaid() []StudentAmount {
	all := v.byStudent(func(inv models.Invoice) decimal.Decimal {
		over := inv.PaidAmount.Sub(inv.Total)
		if over.IsPositive() {
			return over
		}
		return decimal.Zero
	})
	out := make([]StudentAmount, 0, len(all))
	for _, s := range all {
		if s.Amount.IsPositive() {
			out = append(out, s)
		}
	}
	return out
}

// TopOutstanding returns the limit students with the largest summed outstanding amount.
func (v *View) TopOutstanding(limit int) []StudentAmount {
	all := v.byStudent(models.Invoice.Outstanding)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// MethodTotal is the amount received through one payment method.
type MethodTotal struct {
	Method   string          `json:"method"`
	Payments int             `json:"payments"`
	Amount   decimal.Decimal `json:"amount"`
}

// Methods totals payments per method, largest first.
func (v *View) Methods() []MethodTotal {
	idx := make(map[string]int)
	var out []MethodTotal
	for _, p := range v.Payments {
		i, ok := idx[p.Method]
		if !ok {
			i = len(out)
			idx[p.Method] = i
			out = append(out, MethodTotal{Method: p.Method, Amount: decimal.Zero})
		}
		out[i].Payments++
		out[i].Amount = out[i].Amount.Add(p.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cmp(out[j].Amount) > 0
	})
	if out == nil {
		out = []MethodTotal{}
	}
	return out
}
