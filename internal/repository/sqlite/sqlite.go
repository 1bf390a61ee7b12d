// Package sqlite implements repository.DocumentStore on top of an SQLite database.
//
// Each document is one row of the documents table, keyed by name, holding the
// same pretty-printed JSON the file backend writes to disk. The full-document
// read/rewrite contract is unchanged; SQLite just replaces the directory of files.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C toolchain is needed.
//
// DATABASE/SQL OVERVIEW:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryRowContext / db.ExecContext  → runs queries
//  3. row.Scan(&field)                     → reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// The sqlite package's init() registers itself with database/sql as the
	// driver named "sqlite". After this import, sql.Open("sqlite", ...) works.
	_ "modernc.org/sqlite"
)

// DB is an open documents database.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent (every pooled
	// connection would otherwise get its own empty database) and serializes
	// writers, which is all a two-document store needs.
	conn.SetMaxOpenConns(1)

	// Ping verifies the connection actually works, so a bad path or
	// permissions issue surfaces here instead of on the first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close releases the database file.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Every statement is idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			name       TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}
