// Package store provides read-only access to the transactions table.
//
// A Store hands out Sessions; each report acquires its own Session and closes
// it when done, so no connection outlives the request that opened it.
package store

import (
	"context"
	"fmt"

	"sales-analytics/internal/config"
	"sales-analytics/internal/models"
)

type Store interface {
	Acquire(ctx context.Context) (Session, error)
	Close() error
}

type Session interface {
	// Transactions returns every row of the table in store order.
	Transactions(ctx context.Context) ([]models.Transaction, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverCSV:
		return NewCSVStore(cfg.URL)
	case config.DriverPostgres, config.DriverMySQL, config.DriverSQLite:
		return NewSQLStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
