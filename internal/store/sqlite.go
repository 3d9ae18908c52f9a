// Package store provides SQLite- and Redis-backed persistence for suppliers
// and the message journal.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS suppliers (
	supplier_id  TEXT PRIMARY KEY,
	specialty    TEXT NOT NULL,
	trust_score  REAL NOT NULL DEFAULT 0.5
);
CREATE INDEX IF NOT EXISTS idx_suppliers_trust ON suppliers(trust_score DESC);

CREATE TABLE IF NOT EXISTS message_log (
	id           TEXT PRIMARY KEY,
	supplier_id  TEXT NOT NULL,
	kind         TEXT NOT NULL,
	order_id     TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	signal_json  TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_message_log_supplier ON message_log(supplier_id, created_at);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration. Missing parent directories are created.
func NewDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Limit connections to 1 for SQLite (WAL allows concurrent reads but single writer).
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}
