// Package memory provides persistent storage for routing decision outcomes.
package memory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultRetentionCap is the record cap applied when none is configured.
const DefaultRetentionCap = 10000

// Store provides SQLite-backed storage for router memories.
type Store struct {
	db           *sql.DB
	dbPath       string
	retentionCap int
	mu           sync.RWMutex
}

// GlobalDBPath returns the path to the global Steward memory database.
func GlobalDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "steward", "steward.db")
}

// ProjectDBPath returns the path to the project-local memory database.
func ProjectDBPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".steward", "memory.db")
}

// NewStore creates a new Store with the given database path and retention cap.
// A cap of zero or less falls back to DefaultRetentionCap.
// It creates the parent directories if they don't exist.
func NewStore(dbPath string, retentionCap int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if retentionCap <= 0 {
		retentionCap = DefaultRetentionCap
	}

	return &Store{
		db:           conn,
		dbPath:       dbPath,
		retentionCap: retentionCap,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// RetentionCap returns the configured maximum record count.
func (s *Store) RetentionCap() int {
	return s.retentionCap
}

// Helper functions

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
