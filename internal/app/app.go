// Package app wires the shared runtime components — configuration, the
// storage backend, and a logger — once per process, the way
// initializeSystem builds the arx CLI's DI container before any command
// runs.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/joelpate/equipcost/internal/config"
	"github.com/joelpate/equipcost/internal/platformlog"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/internal/store/pgstore"
	"github.com/joelpate/equipcost/internal/store/sqlitestore"
)

// System is the set of components every CLI subcommand and the HTTP server
// build on top of.
type System struct {
	Config *config.Config
	Store  store.Store
	Log    *platformlog.Logger
}

// Bootstrap loads configuration, opens the configured storage backend (its
// Open already runs the schema migration), and sets up the default logger.
func Bootstrap(ctx context.Context) (*System, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}

	log := platformlog.New(platformlog.INFO)

	db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	return &System{Config: cfg, Store: db, Log: log}, nil
}

// openStore dispatches to the sqlite or postgres backend based on the
// configured database URL's scheme.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	url := cfg.Database.URL
	cacheMax := int64(0)
	if cfg.Cache.Enabled {
		cacheMax = cfg.Cache.MaxCostEntries
	}

	switch {
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		return sqlitestore.Open(ctx, path, cacheMax)
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return pgstore.Open(ctx, url, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cacheMax)
	default:
		return nil, fmt.Errorf("app: unrecognized database url scheme in %q", url)
	}
}

// Close releases the underlying storage connection.
func (s *System) Close() error {
	return s.Store.Close()
}
