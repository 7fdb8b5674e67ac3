package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytparty/internal/shared"
)

// SQLiteStore implements [IdentityStore] on the kv_entries table.
//
// Every write is recorded in kv_audit within the same transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open, migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLiteStore opens the database at cfg.Path, applies pool settings and runs pending migrations.
func OpenSQLiteStore(cfg shared.StorageConfig) (*SQLiteStore, error) {
	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}

	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewSQLiteStore(db), nil
}

func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrKeyNotFound
	}
	if err != nil {
		return nil, unavailable("get", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO kv_entries (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	return s.write("set", key, query, key, value, now, now)
}

func (s *SQLiteStore) Remove(key string) error {
	return s.write("remove", key, "DELETE FROM kv_entries WHERE key = ?", key)
}

func (s *SQLiteStore) write(action, key, query string, args ...any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return unavailable(action, key, err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(query, args...)
	if err != nil {
		return unavailable(action, key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return unavailable(action, key, err)
	}

	if rows > 0 {
		if _, err := tx.Exec("INSERT INTO kv_audit (key, action) VALUES (?, ?)", key, action); err != nil {
			return unavailable(action, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable(action, key, err)
	}
	return nil
}

// History returns the recorded actions for key, oldest first.
func (s *SQLiteStore) History(key string) ([]string, error) {
	rows, err := s.db.Query("SELECT action FROM kv_audit WHERE key = ? ORDER BY id ASC", key)
	if err != nil {
		return nil, unavailable("history", key, err)
	}
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return actions, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
