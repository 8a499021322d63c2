package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

// OpenDB opens a SQLite database with WAL mode and foreign keys enabled and
// makes sure the schema exists.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		conn.SetMaxOpenConns(1)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	d := &DB{conn: conn, Path: path}
	if err := d.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS charities (
	id             TEXT PRIMARY KEY,
	position       INTEGER NOT NULL,
	name           TEXT NOT NULL,
	ein            TEXT NOT NULL DEFAULT '',
	gross_receipts REAL NOT NULL DEFAULT 0,
	contributions  REAL NOT NULL DEFAULT 0,
	grants_given   REAL NOT NULL DEFAULT 0,
	taxpayer_funds REAL NOT NULL DEFAULT 0,
	category       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_charities_ein ON charities(ein);
CREATE TABLE IF NOT EXISTS flows (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id TEXT NOT NULL REFERENCES charities(id) ON DELETE CASCADE,
	target_id TEXT NOT NULL REFERENCES charities(id) ON DELETE CASCADE,
	amount    REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_flows_source ON flows(source_id);
CREATE INDEX IF NOT EXISTS idx_flows_target ON flows(target_id);
`

const ftsSchema = `CREATE VIRTUAL TABLE IF NOT EXISTS charities_fts USING fts5(id UNINDEXED, name, ein)`

// Migrate creates any missing tables. The full-text index is optional:
// without FTS5 keyword search falls back to LIKE matching.
func (d *DB) Migrate() error {
	if _, err := d.conn.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	_, _ = d.conn.Exec(ftsSchema)
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}
