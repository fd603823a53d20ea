package reconcile

import (
	"fmt"
	"time"
)

// Config holds reconciliation run settings.
type Config struct {
	// Timezone decides which calendar day counts as "today" for the cascade.
	Timezone string `mapstructure:"timezone" default:"Local"`
	// BatchSize is the number of rows per INSERT statement inside the ledger transaction.
	BatchSize int `mapstructure:"batch_size" default:"500"`
	// ArchivePrefix is the object prefix under which run reports are archived.
	ArchivePrefix string `mapstructure:"archive_prefix" default:"reports/reconcile"`
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
