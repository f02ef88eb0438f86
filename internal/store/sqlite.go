package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed function library.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens or creates the library at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS functions (
			name TEXT PRIMARY KEY,
			params TEXT NOT NULL,
			body TEXT NOT NULL,
			defined_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	switch version {
	case "":
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Get retrieves a definition by name.
func (s *SQLite) Get(name string) (Definition, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var params, body string
	err := s.db.QueryRow("SELECT params, body FROM functions WHERE name = ?", name).Scan(&params, &body)
	if err == sql.ErrNoRows {
		return Definition{}, false, nil
	}
	if err != nil {
		return Definition{}, false, err
	}
	return Definition{Name: name, Params: splitParams(params), Body: body}, true, nil
}

// Put stores a definition. Redefining a name keeps its original position
// in List.
func (s *SQLite) Put(def Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO functions (name, params, body, defined_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET params = excluded.params, body = excluded.body
	`, def.Name, strings.Join(def.Params, ","), def.Body, time.Now().UnixNano())
	return err
}

// Delete removes a definition by name.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM functions WHERE name = ?", name)
	return err
}

// List returns all definitions, oldest first.
func (s *SQLite) List() ([]Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, params, body FROM functions ORDER BY defined_at, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Definition
	for rows.Next() {
		var name, params, body string
		if err := rows.Scan(&name, &params, &body); err != nil {
			return nil, err
		}
		out = append(out, Definition{Name: name, Params: splitParams(params), Body: body})
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func splitParams(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
