package reconcile

import (
	"errors"
	"fmt"

	"payment-integrator/core/database"
	"payment-integrator/core/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Connector opens a store from its configuration.
type Connector func(cfg database.Config) (*gorm.DB, error)

// Stores holds the store handles of one run.
// A nil gateway handle means the gateway could not be reached.
type Stores struct {
	Ledger   *gorm.DB
	Gateways map[models.Source]*gorm.DB

	closed bool
}

// OpenStores connects to the ledger and every configured gateway.
// A ledger connection failure is returned as an error; a gateway failure is
// logged and leaves that gateway's handle nil so the run degrades to the others.
func OpenStores(ledger database.Config, gateways map[models.Source]database.Config, connect Connector, logger *zap.Logger) (*Stores, error) {
	if connect == nil {
		connect = database.Connect
	}

	ledgerDB, err := connect(ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ledger: %w", err)
	}

	stores := &Stores{
		Ledger:   ledgerDB,
		Gateways: make(map[models.Source]*gorm.DB, len(gateways)),
	}
	for _, src := range models.Sources {
		cfg, ok := gateways[src]
		if !ok {
			continue
		}
		db, err := connect(cfg)
		if err != nil {
			logger.Error("Failed to connect to gateway store", zap.String("source", string(src)), zap.Error(err))
			stores.Gateways[src] = nil
			continue
		}
		stores.Gateways[src] = db
	}

	return stores, nil
}

// Gateway returns the handle of a gateway store, or nil.
func (s *Stores) Gateway(src models.Source) *gorm.DB {
	if s == nil || s.Gateways == nil {
		return nil
	}
	return s.Gateways[src]
}

// Close closes every open handle. It is safe to call more than once.
func (s *Stores) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := database.Close(s.Ledger); err != nil {
		errs = append(errs, fmt.Errorf("ledger: %w", err))
	}
	for src, db := range s.Gateways {
		if err := database.Close(db); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
		}
	}
	return errors.Join(errs...)
}
