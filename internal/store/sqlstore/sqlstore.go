// Package sqlstore is the SQLite-backed note store.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/zap"

	"github.com/idilsaglam/notish/internal/model"
	"github.com/idilsaglam/notish/internal/store"
)

const (
	createSchema = `CREATE TABLE IF NOT EXISTS notes (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    note      TEXT    NOT NULL,
    timestamp INTEGER NOT NULL
)`
	dropSchema = `DROP TABLE IF EXISTS notes`

	defaultOperationTimeout = 5 * time.Second
	defaultPingTimeout      = 2 * time.Second
)

// Store implements store.Store on a single SQLite file.
type Store struct {
	db      *sql.DB
	log     *zap.SugaredLogger
	opTO    time.Duration
	pingTO  time.Duration
	nowFunc func() time.Time
}

var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithOperationTimeout bounds every statement.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.opTO = d
		}
	}
}

// WithClock overrides the timestamp source used on insert.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFunc = now }
}

// Open opens (creating if missing) the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		log:     zap.NewNop().Sugar(),
		opTO:    defaultOperationTimeout,
		pingTO:  defaultPingTimeout,
		nowFunc: time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer; avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	pingCtx, pingCancel := context.WithTimeout(ctx, s.pingTO)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	s.db = db

	if err := s.CreateSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Infow("store opened", "path", path)
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates the notes table if it does not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	dbCtx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()
	if _, err := s.db.ExecContext(dbCtx, createSchema); err != nil {
		return store.Wrap("create schema", err)
	}
	return nil
}

// DropSchema removes the notes table and every row in it.
func (s *Store) DropSchema(ctx context.Context) error {
	dbCtx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()
	if _, err := s.db.ExecContext(dbCtx, dropSchema); err != nil {
		return store.Wrap("drop schema", err)
	}
	return nil
}

// Insert adds a row stamped with the current time and returns its id.
func (s *Store) Insert(ctx context.Context, text string) (int64, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()

	ts := s.nowFunc().UTC().UnixMilli()
	res, err := s.db.ExecContext(dbCtx, `INSERT INTO notes (note, timestamp) VALUES (?, ?)`, text, ts)
	if err != nil {
		return 0, store.Wrap("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, store.Wrap("insert", err)
	}
	s.log.Debugw("note inserted", "id", id)
	return id, nil
}

// Get returns the row with id, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (model.Note, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()

	row := s.db.QueryRowContext(dbCtx, `SELECT id, note, timestamp FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.Note{}, fmt.Errorf("get %d: %w", id, store.ErrNotFound)
	case err != nil:
		return model.Note{}, store.Wrap("get", err)
	}
	return n, nil
}

// All returns every row, newest first.
func (s *Store) All(ctx context.Context) ([]model.Note, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()

	rows, err := s.db.QueryContext(dbCtx, `SELECT id, note, timestamp FROM notes ORDER BY id DESC`)
	if err != nil {
		return nil, store.Wrap("list", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, store.Wrap("list", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("list", err)
	}
	return notes, nil
}

// Update overwrites the text of row n.ID.
func (s *Store) Update(ctx context.Context, n model.Note) error {
	dbCtx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()

	res, err := s.db.ExecContext(dbCtx, `UPDATE notes SET note = ? WHERE id = ?`, n.Text, n.ID)
	if err != nil {
		return store.Wrap("update", err)
	}
	return s.expectOne(res, "update", n.ID)
}

// Delete removes row n.ID.
func (s *Store) Delete(ctx context.Context, n model.Note) error {
	dbCtx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()

	res, err := s.db.ExecContext(dbCtx, `DELETE FROM notes WHERE id = ?`, n.ID)
	if err != nil {
		return store.Wrap("delete", err)
	}
	return s.expectOne(res, "delete", n.ID)
}

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.opTO)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		return 0, store.Wrap("count", err)
	}
	return count, nil
}

func (s *Store) expectOne(res sql.Result, op string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Wrap(op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", op, id, store.ErrNotFound)
	}
	s.log.Debugw("note "+op+"d", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (model.Note, error) {
	var (
		n  model.Note
		ms int64
	)
	if err := sc.Scan(&n.ID, &n.Text, &ms); err != nil {
		return model.Note{}, err
	}
	n.Timestamp = time.UnixMilli(ms).UTC()
	return n, nil
}
