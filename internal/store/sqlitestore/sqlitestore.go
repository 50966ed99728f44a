// Package sqlitestore opens the zero-config sqlite backend the CLI uses by
// default, delegating every query to the shared implementation in
// internal/store.
package sqlitestore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/internal/store/sqlgen"
)

// Open connects to the sqlite database at path (which may be ":memory:")
// and runs Migrate before returning. cacheMaxEntries <= 0 disables the read
// cache.
func Open(ctx context.Context, path string, cacheMaxEntries int64) (store.Store, error) {
	db, err := sqlx.Connect(sqlgen.SQLite.DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: connect %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // sqlite3 serializes writers; avoid lock contention
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("sqlitestore: enable foreign keys: %w", err)
	}

	cache, err := store.NewReadCache(cacheMaxEntries)
	if err != nil {
		return nil, err
	}

	backend := store.NewSQLBackend(db, sqlgen.SQLite, cache)
	if err := backend.Migrate(ctx); err != nil {
		return nil, err
	}
	return backend, nil
}
