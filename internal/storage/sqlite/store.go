// Package sqlite provides a single-file SQLite storage backend.
// Each event is one row holding the JSON document of its EventRecord.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/eventledger/internal/model"
	"github.com/mcoot/eventledger/internal/storage"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS events (
	date       TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS admins (
	username TEXT PRIMARY KEY,
	doc      TEXT NOT NULL
);
`

// Store is a SQLite-backed implementation of the storage interface
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) a SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer connection keeps read-modify-write cycles strictly ordered
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, model.WrapStorage("ping", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

var _ storage.Storage = (*Store)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) GetEvent(ctx context.Context, date model.EventDate) (*model.EventRecord, error) {
	record, err := loadEvent(ctx, s.sqlDB, date)
	if err != nil {
		return nil, model.WrapStorage("get event", err)
	}
	return record, nil
}

func (s *Store) SaveEvent(ctx context.Context, record *model.EventRecord) error {
	return model.WrapStorage("save event", putEvent(ctx, s.sqlDB, record))
}

func (s *Store) ListEventDates(ctx context.Context) ([]model.EventDate, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT date FROM events ORDER BY date`)
	if err != nil {
		return nil, model.WrapStorage("list events", err)
	}
	defer func() { _ = rows.Close() }()

	dates := []model.EventDate{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, model.WrapStorage("list events", err)
		}
		dates = append(dates, model.EventDate(d))
	}
	if err := rows.Err(); err != nil {
		return nil, model.WrapStorage("list events", err)
	}
	return dates, nil
}

// UpdateEvent applies fn inside an immediate transaction. The write lock is
// taken at BEGIN so no other writer can interleave between read and write.
func (s *Store) UpdateEvent(ctx context.Context, date model.EventDate, newRecord func() *model.EventRecord, fn storage.UpdateFunc) (*model.EventRecord, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, model.WrapStorage("update event", err)
	}
	defer func() { _ = tx.Rollback() }()

	record, err := loadEvent(ctx, tx, date)
	if errors.Is(err, model.ErrEventNotFound) && newRecord != nil {
		record = newRecord()
	} else if err != nil {
		return nil, model.WrapStorage("update event", err)
	}

	if err := fn(record); err != nil {
		return nil, err
	}

	if err := putEvent(ctx, tx, record); err != nil {
		return nil, model.WrapStorage("update event", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, model.WrapStorage("update event", err)
	}
	return record, nil
}

func loadEvent(ctx context.Context, q queryer, date model.EventDate) (*model.EventRecord, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT doc FROM events WHERE date = ?`, string(date)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	var record model.EventRecord
	if err := json.Unmarshal([]byte(doc), &record); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", date, err)
	}
	if record.Players == nil {
		record.Players = []model.Player{}
	}
	return &record, nil
}

func putEvent(ctx context.Context, q queryer, record *model.EventRecord) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO events (date, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		string(record.Date), string(doc), record.UpdatedAt.UTC().Format(timeFormat),
	)
	return err
}

func (s *Store) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	doc, err := json.Marshal(admin)
	if err != nil {
		return model.WrapStorage("save admin", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO admins (username, doc) VALUES (?, ?)
		 ON CONFLICT(username) DO UPDATE SET doc = excluded.doc`,
		admin.Username, string(doc),
	)
	return model.WrapStorage("save admin", err)
}

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var doc string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT doc FROM admins WHERE username = ?`, username).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrAdminNotFound
	}
	if err != nil {
		return nil, model.WrapStorage("get admin", err)
	}

	var admin model.Admin
	if err := json.Unmarshal([]byte(doc), &admin); err != nil {
		return nil, model.WrapStorage("get admin", err)
	}
	return &admin, nil
}
