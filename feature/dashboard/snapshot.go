package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payment-integrator/core/models"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Snapshot is a point-in-time copy of the ledger tables.
type Snapshot struct {
	Students []models.Student
	Invoices []models.Invoice
	Payments []models.Payment
	// Built is when the snapshot was loaded.
	Built time.Time
}

// LoadSnapshot reads the three ledger tables concurrently.
func LoadSnapshot(ctx context.Context, db *gorm.DB) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := db.WithContext(ctx).Order("id").Find(&snap.Students).Error; err != nil {
			return fmt.Errorf("failed to load students: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := db.WithContext(ctx).Order("invoice_number").Find(&snap.Invoices).Error; err != nil {
			return fmt.Errorf("failed to load invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := db.WithContext(ctx).Order("payment_date, id").Find(&snap.Payments).Error; err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.Built = time.Now()
	return snap, nil
}

// snapshotCache keeps the last snapshot for ttl. Concurrent misses share one load.
type snapshotCache struct {
	db  *gorm.DB
	ttl time.Duration

	mu   sync.RWMutex
	snap *Snapshot
	sf   singleflight.Group
}

func newSnapshotCache(db *gorm.DB, ttl time.Duration) *snapshotCache {
	return &snapshotCache{db: db, ttl: ttl}
}

func (c *snapshotCache) expired(snap *Snapshot) bool {
	if snap == nil || c.ttl <= 0 {
		return true
	}
	return time.Since(snap.Built) > c.ttl
}

// Get returns the cached snapshot or loads a new one.
func (c *snapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if !c.expired(snap) {
		return snap, nil
	}

	v, err, _ := c.sf.Do("snapshot", func() (any, error) {
		// another caller may have refreshed it while we waited
		c.mu.RLock()
		current := c.snap
		c.mu.RUnlock()
		if !c.expired(current) {
			return current, nil
		}

		fresh, err := LoadSnapshot(ctx, c.db)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.snap = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate drops the cached snapshot.
func (c *snapshotCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}
