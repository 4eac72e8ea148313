// Package history records completed transfers in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // SQLite driver
)

const tableName = "transfers"

// Entry is one recorded transfer.
type Entry struct {
	ID        uuid.UUID
	Operation string
	Bucket    string
	Key       string
	Status    string
	ETag      string
	SizeBytes int64
	CreatedAt time.Time
}

// Log is an append-only transfer log backed by SQLite.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the transfer log at the given DSN and runs
// migrations.
func Open(ctx context.Context, dsn string) (*Log, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Log{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			id TEXT NOT NULL PRIMARY KEY,
			op TEXT NOT NULL,
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			status TEXT NOT NULL,
			etag TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)
	`, tableName)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("migrate: create table: %w", err)
	}

	indexSQL := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS "idx_%s_created_at" ON %q (created_at)
	`, tableName, tableName)

	if _, err := db.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("migrate: create index: %w", err)
	}

	return nil
}

// Record appends an entry. A zero ID and CreatedAt are filled in; the
// stored entry is returned.
func (l *Log) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(
		`INSERT INTO %q (id, op, bucket, key, status, etag, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, tableName)

	_, err := l.db.ExecContext(ctx, query,
		e.ID.String(), e.Operation, e.Bucket, e.Key, e.Status, e.ETag, e.SizeBytes,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record: %w", err)
	}

	return e, nil
}

// List returns the most recent entries, newest first. A limit of zero or
// less returns all entries.
func (l *Log) List(ctx context.Context, limit int) ([]Entry, error) {
	query := fmt.Sprintf(
		`SELECT id, op, bucket, key, status, etag, size_bytes, created_at
		FROM %q
		ORDER BY created_at DESC, id`, tableName)

	var args []any
	if limit > 0 {
		query += "\nLIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var idStr, createdAt string

		if err := rows.Scan(&idStr, &e.Operation, &e.Bucket, &e.Key, &e.Status, &e.ETag, &e.SizeBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}

		e.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("list: parse uuid: %w", err)
		}

		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list: parse created_at: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return entries, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}
