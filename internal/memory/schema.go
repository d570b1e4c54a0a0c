package memory

// Migrate creates the necessary tables and indexes if they don't exist.
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create schema version table
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memory_schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM memory_schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	// Apply migrations
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1RouterMemories},
		{2, migrationV2Satisfaction},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return err
		}

		if _, err := tx.Exec("INSERT INTO memory_schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// Migration SQL statements
const migrationV1RouterMemories = `
CREATE TABLE IF NOT EXISTS router_memories (
	id TEXT PRIMARY KEY,
	timestamp DATETIME NOT NULL,
	request_fingerprint TEXT NOT NULL,
	task_type TEXT NOT NULL,
	complexity TEXT NOT NULL,
	selected_agent TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0,
	success INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	context TEXT,
	outcome TEXT
);

CREATE INDEX IF NOT EXISTS idx_memories_type_complexity
	ON router_memories(task_type, complexity);

CREATE INDEX IF NOT EXISTS idx_memories_timestamp
	ON router_memories(timestamp);

CREATE INDEX IF NOT EXISTS idx_memories_agent
	ON router_memories(selected_agent);
`

const migrationV2Satisfaction = `
ALTER TABLE router_memories ADD COLUMN satisfaction REAL;
`
