package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers dashboard queries from a cached ledger snapshot.
type Service struct {
	cache  *snapshotCache
	logger *zap.Logger
	clock  func() time.Time
}

// NewService creates a dashboard service. A ttl of zero reloads the snapshot on every request.
func NewService(db *gorm.DB, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		cache:  newSnapshotCache(db, ttl),
		logger: logger,
		clock:  time.Now,
	}
}

// View returns the filtered snapshot.
func (s *Service) View(ctx context.Context, f Filter) (*View, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(snap), nil
}

// Refresh drops the cached snapshot so the next request reloads it.
func (s *Service) Refresh() {
	s.cache.Invalidate()
}
