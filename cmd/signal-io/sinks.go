package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"signal-io/internal/config"
	"signal-io/internal/ingestion"
	"signal-io/internal/storage"
	"signal-io/internal/storage/clickhouse"
	"signal-io/internal/storage/memory"
	"signal-io/internal/storage/migrations"
	"signal-io/internal/storage/postgres"
	"signal-io/internal/storage/sqlite"
)

// sinkEnv is an opened database sink with migrations applied.
type sinkEnv struct {
	Driver  string
	Signals storage.SignalStore
	Issues  storage.IssueStore // nil for clickhouse
	closeFn func()
}

// Sink wraps the stores for the ingestion runner.
func (e *sinkEnv) Sink() ingestion.SignalSink {
	return ingestion.NewStoreSink(e.Driver, e.Signals, e.Issues)
}

// Close releases the underlying connection.
func (e *sinkEnv) Close() {
	if e.closeFn != nil {
		e.closeFn()
	}
}

// openSink connects to the store selected by driver and applies its schema.
// Returns nil for config.DriverNone.
func openSink(ctx context.Context, driver string) (*sinkEnv, error) {
	if err := config.ValidateDriver(driver); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("sink", driver))

	switch driver {
	case config.DriverMemory:
		return &sinkEnv{Driver: driver, Signals: memory.NewSignalStore(), Issues: memory.NewIssueStore()}, nil

	case config.DriverSQLite:
		path := cfg.Store.SQLitePath
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, eris.Wrapf(err, "create dir for %s", path)
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Debug("sqlite ready", zap.String("path", path))
		return &sinkEnv{
			Driver:  driver,
			Signals: sqlite.NewSignalStore(db),
			Issues:  sqlite.NewIssueStore(db),
			closeFn: func() { db.Close() },
		}, nil

	case config.DriverPostgres:
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store.database_url is required for the postgres sink (SIGNALIO_STORE_DATABASE_URL)")
		}
		pool, err := postgres.NewPool(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Debug("postgres ready")
		return &sinkEnv{
			Driver:  driver,
			Signals: postgres.NewSignalStore(pool),
			Issues:  postgres.NewIssueStore(pool),
			closeFn: pool.Close,
		}, nil

	case config.DriverClickhouse:
		if cfg.Store.ClickhouseDSN == "" {
			return nil, eris.New("store.clickhouse_dsn is required for the clickhouse sink (SIGNALIO_STORE_CLICKHOUSE_DSN)")
		}
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Store.ClickhouseDSN)
		if err != nil {
			return nil, err
		}
		log.Debug("clickhouse ready")
		return &sinkEnv{
			Driver:  driver,
			Signals: clickhouse.NewSignalStore(conn),
			closeFn: func() { conn.Close() },
		}, nil
	}

	return nil, nil
}
