package integrity

import (
	"context"
	"fmt"
	"sort"

	"payment-integrator/core/models"
	"payment-integrator/core/storage"
	"payment-integrator/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is a database checked against its models.
type Store struct {
	Name   string
	DB     *gorm.DB
	Models []any
}

// LedgerStore returns the ledger store definition.
func LedgerStore(db *gorm.DB) Store {
	return Store{Name: "ledger", DB: db, Models: []any{models.Student{}, models.Invoice{}, models.Payment{}}}
}

// GatewayStore returns the store definition of a gateway.
func GatewayStore(src models.Source, db *gorm.DB) Store {
	var model any
	switch src {
	case models.SourceXendit:
		model = models.XenditPayment{}
	case models.SourcePaperID:
		model = models.PaperIDPayment{}
	}
	return Store{Name: string(src), DB: db, Models: []any{model}}
}

// Archive locates the run-report archive. A nil Client disables the archive check.
type Archive struct {
	Client storage.Client
	Bucket string
	Prefix string
	Region string
}

// Service handles integrity checks.
type Service struct {
	stores  []Store
	archive Archive
	logger  *zap.Logger
}

// NewService creates a new integrity service.
func NewService(stores []Store, archive Archive, logger *zap.Logger) *Service {
	return &Service{
		stores:  stores,
		archive: archive,
		logger:  logger,
	}
}

// CheckSchema compares every store with its models.
// A store that could not be connected is reported as unmatched.
func (s *Service) CheckSchema() []*checks.SchemaReport {
	reports := make([]*checks.SchemaReport, 0, len(s.stores))
	for _, store := range s.stores {
		if store.DB == nil {
			reports = append(reports, &checks.SchemaReport{
				Store:  store.Name,
				Tables: map[string]checks.TableReport{},
				Errors: []string{"store is not connected"},
			})
			continue
		}
		report, err := checks.CheckSchema(store.DB, store.Name, store.Models...)
		if err != nil {
			report = &checks.SchemaReport{Store: store.Name, Tables: map[string]checks.TableReport{}, Errors: []string{err.Error()}}
		}
		reports = append(reports, report)
	}
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Store < reports[j].Store })
	return reports
}

// ArchiveEnabled reports whether an archive is configured.
func (s *Service) ArchiveEnabled() bool {
	return s.archive.Client != nil
}

// CheckArchive inspects the run-report archive.
func (s *Service) CheckArchive(ctx context.Context) (*checks.ArchiveReport, error) {
	if !s.ArchiveEnabled() {
		return nil, fmt.Errorf("report archive is not configured")
	}
	return checks.CheckArchive(ctx, s.archive.Client, s.archive.Bucket, s.archive.Prefix)
}

// FixArchive creates the archive bucket.
func (s *Service) FixArchive(ctx context.Context) error {
	if !s.ArchiveEnabled() {
		return fmt.Errorf("report archive is not configured")
	}
	return checks.FixArchive(ctx, s.archive.Client, s.archive.Bucket, s.archive.Region, s.logger)
}

// Healthy reports whether every schema report matched.
func Healthy(reports []*checks.SchemaReport) bool {
	for _, r := range reports {
		if !r.Matched {
			return false
		}
	}
	return true
}
