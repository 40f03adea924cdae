// Package cache stores todos locally in SQLite so the list survives
// restarts and stays readable while the server is unreachable.
package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"todosync/internal/domain/todo"
	"todosync/pkg/api"
	appErrors "todosync/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - empty database (pre-schema)
// 1 - initial todos table
const currentSchemaVersion = 1

const upsertSQL = `
	INSERT INTO todos (id, legacy_id, document, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		legacy_id  = excluded.legacy_id,
		document   = excluded.document,
		created_at = excluded.created_at
`

// Store is a SQLite-backed todo cache. WAL mode keeps reads available
// while a write is in flight; the pool is capped at one connection since
// SQLite allows a single writer.
type Store struct {
	db     *sql.DB
	clock  func() time.Time
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for patch timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// Open creates or opens the cache database at path, applying pragmas and
// schema migrations. Safe to call repeatedly on the same file.
func Open(path string, logger *zap.Logger, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to open cache database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, appErrors.Wrap(err, "failed to connect to cache database")
	}

	// More connections only produce SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, clock: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReadAll returns every cached todo in creation order. Rows that fail to
// decode or carry no usable identifier are dropped rather than failing
// the read: one corrupt record must not take the rest of the cache down.
func (s *Store) ReadAll(ctx context.Context) ([]todo.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM todos
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to query cached todos")
	}
	defer rows.Close()

	items := []todo.Item{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, appErrors.Wrap(err, "failed to scan cached todo")
		}

		var doc api.TodoDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.Warn("dropping undecodable cache row", zap.Error(err))
			continue
		}
		item, ok := todo.FromDocument(doc)
		if !ok {
			s.logger.Warn("dropping cache row without usable id", zap.String("text", doc.Text))
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, "failed to iterate cached todos")
	}
	return items, nil
}

// WriteAll replaces the entire cache contents in one transaction.
func (s *Store) WriteAll(ctx context.Context, items []todo.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, "failed to begin cache rewrite")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM todos"); err != nil {
		return appErrors.Wrap(err, "failed to clear cached todos")
	}
	for _, item := range items {
		id, legacyID, document, createdAt, err := rowValues(item)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertSQL, id, legacyID, document, createdAt); err != nil {
			return appErrors.Wrap(err, "failed to write cached todo "+id)
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, "failed to commit cache rewrite")
	}
	return nil
}

// Upsert inserts or replaces the record with the item's canonical id.
func (s *Store) Upsert(ctx context.Context, item todo.Item) (todo.Item, error) {
	id, legacyID, document, createdAt, err := rowValues(item)
	if err != nil {
		return todo.Item{}, err
	}
	if _, err := s.db.ExecContext(ctx, upsertSQL, id, legacyID, document, createdAt); err != nil {
		return todo.Item{}, appErrors.Wrap(err, "failed to upsert cached todo "+id)
	}
	return item, nil
}

// Update applies a patch to the cached record matching id under either
// identifier spelling.
func (s *Store) Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return todo.Item{}, err
	}

	updated, err := current.Apply(patch, s.clock())
	if err != nil {
		return todo.Item{}, err
	}
	return s.Upsert(ctx, updated)
}

// Delete removes the record matching id under either identifier
// spelling. The bool reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ? OR legacy_id = ?", id, id)
	if err != nil {
		return false, appErrors.Wrap(err, "failed to delete cached todo "+id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, appErrors.Wrap(err, "failed to delete cached todo "+id)
	}
	if affected == 0 {
		return false, appErrors.NewNotFound("todo not cached: " + id)
	}
	return true, nil
}

// Clear removes every cached todo.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM todos"); err != nil {
		return appErrors.Wrap(err, "failed to clear cached todos")
	}
	return nil
}

// find loads one record by either identifier spelling. A row that cannot
// be decoded reads as missing so callers can rewrite it.
func (s *Store) find(ctx context.Context, id string) (todo.Item, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM todos WHERE id = ? OR legacy_id = ?", id, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return todo.Item{}, appErrors.NewNotFound("todo not cached: " + id)
	}
	if err != nil {
		return todo.Item{}, appErrors.Wrap(err, "failed to query cached todo "+id)
	}

	var doc api.TodoDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return todo.Item{}, appErrors.NewNotFound("todo not cached: " + id)
	}
	item, ok := todo.FromDocument(doc)
	if !ok {
		return todo.Item{}, appErrors.NewNotFound("todo not cached: " + id)
	}
	return item, nil
}

func rowValues(item todo.Item) (id, legacyID, document, createdAt string, err error) {
	doc := todo.ToDocument(item)
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", "", "", "", appErrors.Wrap(err, "failed to encode todo "+item.ID)
	}
	return item.ID, doc.LegacyID, string(payload), item.CreatedAt.UTC().Format(time.RFC3339Nano), nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return appErrors.Wrap(err, "failed to execute "+pragma)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return appErrors.Wrap(err, "failed to apply cache schema")
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return appErrors.Wrap(err, "failed to read schema version")
	}
	if version < currentSchemaVersion {
		stmt := fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)
		if _, err := db.Exec(stmt); err != nil {
			return appErrors.Wrap(err, "failed to set schema version")
		}
	}
	return nil
}
