package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"verilens/internal/logging"
	"verilens/internal/types"
)

// schemaVersion tracks the history layout so future field changes can
// migrate instead of silently corrupting old rows.
const schemaVersion = 1

// SQLiteStore persists history in a single-writer SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	mu         sync.Mutex
	maxEntries int
}

// NewSQLiteStore opens (or creates) the history database at path.
func NewSQLiteStore(path string, maxEntries int) (*SQLiteStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &SQLiteStore{db: db, maxEntries: maxEntries}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("history store ready at %s (cap %d)", path, maxEntries)
	return s, nil
}

// migrate creates the schema and records the layout version.
func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_meta (
			key   TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS verification_history (
			id         TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			payload    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_created
			ON verification_history(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var current int
	err = s.db.QueryRow(`SELECT value FROM schema_meta WHERE key = 'version'`).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(`INSERT INTO schema_meta (key, value) VALUES ('version', ?)`, schemaVersion)
		if err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case current > schemaVersion:
		return fmt.Errorf("history database is version %d, newer than supported %d", current, schemaVersion)
	}
	return nil
}

// Record inserts result at the front of the history: same-id rows are
// replaced, and entries beyond the cap are evicted oldest-first, all in
// one transaction.
func (s *SQLiteStore) Record(result *types.VerificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM verification_history WHERE id = ?`, result.ID); err != nil {
		return fmt.Errorf("failed to replace entry: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO verification_history (id, created_at, payload) VALUES (?, ?, ?)`,
		result.ID, result.Timestamp, string(payload),
	); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	if _, err := tx.Exec(`
		DELETE FROM verification_history WHERE id NOT IN (
			SELECT id FROM verification_history
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)`, s.maxEntries,
	); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.StoreDebug("recorded result %s (%s)", result.ID, result.Type)
	return nil
}

// List returns the history, most recent first. Rows that no longer
// decode (from a hand-edited or damaged database) are skipped, not fatal.
func (s *SQLiteStore) List() ([]types.VerificationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT payload FROM verification_history
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var results []types.VerificationResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var r types.VerificationResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			logging.Store("skipping undecodable history row: %v", err)
			continue
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Clear removes every entry.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM verification_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	logging.Store("history cleared")
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
