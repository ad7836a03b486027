// Package sqlstore implements docstore.Store over database/sql.
// Drivers (sqlite, postgres) open the connection, apply Schema and pick a Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandilya-stack/coach-server/internal/docstore"
)

// Dialect captures the differences between SQL backends.
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2, ...) instead of '?'.
	Numbered bool
}

var (
	SQLite   = Dialect{Name: "sqlite"}
	Postgres = Dialect{Name: "postgres", Numbered: true}
)

// Schema creates the documents table. Both dialects accept it unchanged.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
        path TEXT PRIMARY KEY,
        collection TEXT NOT NULL,
        data TEXT NOT NULL,
        version BIGINT NOT NULL,
        created_at BIGINT NOT NULL,
        updated_at BIGINT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS documents_collection_created ON documents (collection, created_at)`,
}

// EnsureSchema applies Schema idempotently.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// New wraps an open connection whose schema has already been applied.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// rebind rewrites '?' placeholders for dialects that number them.
func (s *Store) rebind(q string) string {
	if !s.dialect.Numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const selectCols = `SELECT path, collection, data, version, created_at, updated_at FROM documents`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*docstore.Document, error) {
	var (
		d                docstore.Document
		data             string
		created, updated int64
	)
	if err := row.Scan(&d.Path, &d.Collection, &data, &d.Version, &created, &updated); err != nil {
		return nil, err
	}
	d.Data = []byte(data)
	d.CreatedAt = time.Unix(0, created).UTC()
	d.UpdatedAt = time.Unix(0, updated).UTC()
	return &d, nil
}

func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, s.rebind(selectCols+` WHERE path = ?`), path)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.NotFound(path)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return d, nil
}

// insertIfAbsent reports whether a row was inserted.
func (s *Store) insertIfAbsent(ctx context.Context, path string, data []byte) (bool, error) {
	now := s.now().UnixNano()
	res, err := s.db.ExecContext(ctx, s.rebind(`
        INSERT INTO documents (path, collection, data, version, created_at, updated_at)
        VALUES (?, ?, ?, 1, ?, ?)
        ON CONFLICT (path) DO NOTHING
    `), path, docstore.CollectionOf(path), string(data), now, now)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) Create(ctx context.Context, path string, data []byte) (*docstore.Document, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	inserted, err := s.insertIfAbsent(ctx, path, data)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, docstore.Conflict(path)
	}
	return s.Get(ctx, path)
}

func (s *Store) GetOrCreate(ctx context.Context, path string, data []byte) (*docstore.Document, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	if _, err := s.insertIfAbsent(ctx, path, data); err != nil {
		return nil, err
	}
	return s.Get(ctx, path)
}

func (s *Store) Update(ctx context.Context, path string, data []byte, expectedVersion int64) (*docstore.Document, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`
        UPDATE documents SET data = ?, version = version + 1, updated_at = ?
        WHERE path = ? AND version = ?
    `), string(data), s.now().UnixNano(), path, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish a missing document from a stale version.
		if _, err := s.Get(ctx, path); err != nil {
			return nil, err
		}
		return nil, docstore.Conflict(path)
	}
	return s.Get(ctx, path)
}

func (s *Store) Query(ctx context.Context, collection string) ([]*docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(selectCols+` WHERE collection = ? ORDER BY created_at ASC, path ASC`), collection)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()
	var out []*docstore.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// HealthPing implements health.Pinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.Ping(ctx) }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
