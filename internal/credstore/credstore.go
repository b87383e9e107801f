// Package credstore persists the session's bearer token across runs. The
// token lives in a single key/value table in a local sqlite database; the
// store never inspects the value, and never decides validity on its own.
package credstore

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const tokenKey = "token"

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single writer, single reader; the client never needs more.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the stored token, or the empty string when none is stored.
func (s *Store) Get() (string, error) {
	var value string
	err := s.db.QueryRow(
		"SELECT value FROM credentials WHERE key = ?", tokenKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) Set(token string) error {
	_, err := s.db.Exec(
		`INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		tokenKey, token,
	)
	return err
}

func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM credentials WHERE key = ?", tokenKey)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
