package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/randalmurphal/weathergear/pkg/weathergear/rules"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists rule definitions to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite rule store.
// The path should be a file path (e.g., "./rules.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			set_name TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			condition TEXT NOT NULL,
			updated TEXT NOT NULL,
			UNIQUE (set_name, rule_name)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(set string, def rules.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// The conflict branch leaves id untouched so List order is stable.
	_, err := s.db.Exec(`
		INSERT INTO rules (set_name, rule_name, condition, updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(set_name, rule_name) DO UPDATE SET
			condition = excluded.condition,
			updated = excluded.updated
	`, set, def.Name, def.When, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save rule: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(set, name string) (rules.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return rules.Definition{}, ErrStoreClosed
	}

	def := rules.Definition{Name: name}
	err := s.db.QueryRow(`
		SELECT condition FROM rules
		WHERE set_name = ? AND rule_name = ?
	`, set, name).Scan(&def.When)

	if errors.Is(err, sql.ErrNoRows) {
		return rules.Definition{}, ErrNotFound
	}
	if err != nil {
		return rules.Definition{}, fmt.Errorf("load rule: %w", err)
	}
	return def, nil
}

// List implements Store.
func (s *SQLiteStore) List(set string) ([]rules.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT rule_name, condition
		FROM rules
		WHERE set_name = ?
		ORDER BY id
	`, set)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	defs := []rules.Definition{}
	for rows.Next() {
		var def rules.Definition
		if err := rows.Scan(&def.Name, &def.When); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return defs, nil
}

// Sets implements Store.
func (s *SQLiteStore) Sets() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`SELECT DISTINCT set_name FROM rules ORDER BY set_name`)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}
	return names, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(set, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM rules
		WHERE set_name = ? AND rule_name = ?
	`, set, name)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// DeleteSet implements Store.
func (s *SQLiteStore) DeleteSet(set string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM rules WHERE set_name = ?`, set); err != nil {
		return fmt.Errorf("delete rule set: %w", err)
	}
	return nil
}

// ReplaceSet implements Store.
// The delete and inserts run in one transaction.
func (s *SQLiteStore) ReplaceSet(set string, defs []rules.Definition) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM rules WHERE set_name = ?`, set); err != nil {
		return fmt.Errorf("replace rule set: %w", err)
	}

	updated := time.Now().UTC().Format(time.RFC3339Nano)
	for _, def := range defs {
		if _, err = tx.Exec(`
			INSERT INTO rules (set_name, rule_name, condition, updated)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(set_name, rule_name) DO UPDATE SET
				condition = excluded.condition,
				updated = excluded.updated
		`, set, def.Name, def.When, updated); err != nil {
			return fmt.Errorf("replace rule %s: %w", def.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rule set: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
