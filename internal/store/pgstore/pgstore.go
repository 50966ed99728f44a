// Package pgstore opens the postgres backend for multi-writer deployments,
// delegating every query to the shared implementation in internal/store.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/internal/store/sqlgen"
)

// Open connects to the postgres database at dsn and runs Migrate before
// returning. cacheMaxEntries <= 0 disables the read cache.
func Open(ctx context.Context, dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration, cacheMaxEntries int64) (store.Store, error) {
	db, err := sqlx.Connect(sqlgen.Postgres.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}

	cache, err := store.NewReadCache(cacheMaxEntries)
	if err != nil {
		return nil, err
	}

	backend := store.NewSQLBackend(db, sqlgen.Postgres, cache)
	if err := backend.Migrate(ctx); err != nil {
		return nil, err
	}
	return backend, nil
}
