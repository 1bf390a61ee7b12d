package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/imageboard/internal/repository"
)

var _ repository.DocumentStore = (*DB)(nil)

// Read returns the body of the named document.
func (db *DB) Read(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := db.conn.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE name = ?`,
		name,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlite: %s: %w", name, repository.ErrNoDocument)
		}
		return nil, fmt.Errorf("sqlite: reading document %s: %w", name, err)
	}
	return body, nil
}

// Write inserts the document or replaces its body (UPSERT).
func (db *DB) Write(ctx context.Context, name string, data []byte) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO documents (name, body, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		     body = excluded.body,
		     updated_at = excluded.updated_at`,
		name,
		data,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing document %s: %w", name, err)
	}
	return nil
}
