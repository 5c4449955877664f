// Package sqlite provides a Store backed by a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/tunamud/internal/store"
	"modernc.org/sqlite"
)

// DBFilename is the name of the database file created in the storage dir.
const DBFilename = "client.db"

// Store is a store.Store that keeps its data in SQLite.
type Store struct {
	dbFilename string
	db         *sql.DB
}

// NewDatastore opens (creating if needed) the database in storageDir.
func NewDatastore(storageDir string) (*Store, error) {
	st := &Store{
		dbFilename: filepath.Join(storageDir, DBFilename),
	}

	var err error
	st.db, err = sql.Open("sqlite", st.dbFilename)
	if err != nil {
		return nil, wrapDBError(err)
	}

	if err := st.init(); err != nil {
		st.db.Close()
		return nil, err
	}

	return st, nil
}

func (s *Store) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS kv (
		key TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL,
		updated INTEGER NOT NULL
	);`
	_, err := s.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?;`, key)
	err := row.Scan(&value)
	if err != nil {
		return "", wrapDBError(err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv (key, value, updated) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated=excluded.updated;`,
		key,
		value,
		time.Now().Unix(),
	)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?;`, key)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.dbFilename, err)
	}
	return nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
