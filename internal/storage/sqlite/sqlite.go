// Package sqlite implements the storage interfaces on an embedded SQLite file
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// tsLayout is fixed-width so that lexical order equals time order.
const tsLayout = "2006-01-02T15:04:05.000000Z"

// DB wraps a SQLite handle shared by the signal and issue stores.
type DB struct {
	db *sql.DB
}

// Open opens a SQLite database at the given path and configures WAL mode.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single writer connection avoids SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &DB{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS signals (
	signal_id         TEXT PRIMARY KEY,
	signal_ts         TEXT NOT NULL,
	source            TEXT NOT NULL,
	payload_type      TEXT NOT NULL,
	adapter_name      TEXT NOT NULL,
	input_file        TEXT NOT NULL,
	input_line_number INTEGER NOT NULL,
	document          TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS ingest_issues (
	run_id            TEXT NOT NULL,
	seq               INTEGER NOT NULL,
	kind              TEXT NOT NULL,
	message           TEXT NOT NULL,
	input_file        TEXT NOT NULL,
	input_line_number INTEGER NOT NULL,
	raw_line          TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(signal_ts, signal_id);
CREATE INDEX IF NOT EXISTS idx_signals_source ON signals(source, signal_ts);
`

// Migrate creates the tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "sqlite: parse timestamp %q", s)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
