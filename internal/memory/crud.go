package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/pkg/models"
)

// memoryColumns is the column list shared by every row scan.
const memoryColumns = `id, timestamp, request_fingerprint, task_type, complexity,
	selected_agent, confidence, success, duration_ms, satisfaction, context, outcome`

// Store inserts a router memory and enforces the retention cap in the same
// transaction, evicting oldest records first when the cap is exceeded.
// Returns the record's ID (generated when the record carries none).
func (s *Store) Store(mem *models.RouterMemory) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mem == nil {
		return "", fmt.Errorf("store memory: nil record")
	}

	id := mem.ID
	if id == "" {
		id = uuid.New().String()
	}
	ts := mem.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	contextJSON, err := marshalMap(mem.Context)
	if err != nil {
		return "", fmt.Errorf("encode context: %w", err)
	}
	outcomeJSON, err := marshalMap(mem.Outcome)
	if err != nil {
		return "", fmt.Errorf("encode outcome: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin store transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO router_memories (
			id, timestamp, request_fingerprint, task_type, complexity,
			selected_agent, confidence, success, duration_ms, satisfaction, context, outcome
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		formatTime(ts),
		mem.RequestFingerprint,
		string(mem.TaskType),
		string(mem.Complexity),
		string(mem.SelectedAgent),
		mem.Confidence,
		boolToInt(mem.Success),
		mem.Duration.Milliseconds(),
		nullFloat(mem.Satisfaction),
		contextJSON,
		outcomeJSON,
	)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("insert memory: %w", err)
	}

	// Oldest-first eviction keeps the table at or below the cap.
	_, err = tx.Exec(`
		DELETE FROM router_memories WHERE id IN (
			SELECT id FROM router_memories
			ORDER BY timestamp DESC, id DESC
			LIMIT -1 OFFSET ?
		)
	`, s.retentionCap)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("enforce retention cap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit store transaction: %w", err)
	}

	return id, nil
}

// Get retrieves a memory by its ID. Returns nil without error when the
// record does not exist.
func (s *Store) Get(id string) (*models.RouterMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+memoryColumns+` FROM router_memories WHERE id = ?`, id)
	mem, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query memory: %w", err)
	}
	return mem, nil
}

// QueryBySimilarity returns memories with the exact (task type, complexity)
// pair, most recent first, bounded by limit.
func (s *Store) QueryBySimilarity(taskType models.TaskType, complexity models.Complexity, limit int) ([]*models.RouterMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT `+memoryColumns+`
		FROM router_memories
		WHERE task_type = ? AND complexity = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, string(taskType), string(complexity), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar memories: %w", err)
	}
	defer rows.Close()

	var memories []*models.RouterMemory
	for rows.Next() {
		mem, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		memories = append(memories, mem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}

	return memories, nil
}

// Recent returns up to limit of the most recent memories, ordered oldest
// first so callers can replay them in arrival order.
func (s *Store) Recent(limit int) ([]*models.RouterMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT `+memoryColumns+`
		FROM router_memories
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent memories: %w", err)
	}
	defer rows.Close()

	var memories []*models.RouterMemory
	for rows.Next() {
		mem, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		memories = append(memories, mem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}

	// Flip newest-first query order into replay order.
	for i, j := 0, len(memories)-1; i < j; i, j = i+1, j-1 {
		memories[i], memories[j] = memories[j], memories[i]
	}

	return memories, nil
}

// Count returns the total number of stored memories.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM router_memories").Scan(&count); err != nil {
		return 0, fmt.Errorf("count memories: %w", err)
	}
	return count, nil
}

// PurgeOlderThan deletes memories older than the given number of days and
// returns how many were removed.
func (s *Store) PurgeOlderThan(days int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days <= 0 {
		return 0, fmt.Errorf("purge: days must be positive, got %d", days)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	res, err := s.db.Exec("DELETE FROM router_memories WHERE timestamp < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge memories: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}
	return int(affected), nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanMemory scans one router_memories row into a RouterMemory.
func scanMemory(row rowScanner) (*models.RouterMemory, error) {
	var (
		mem          models.RouterMemory
		timestamp    string
		taskType     string
		complexity   string
		agent        string
		success      int
		durationMS   int64
		satisfaction sql.NullFloat64
		contextJSON  sql.NullString
		outcomeJSON  sql.NullString
	)

	err := row.Scan(
		&mem.ID,
		&timestamp,
		&mem.RequestFingerprint,
		&taskType,
		&complexity,
		&agent,
		&mem.Confidence,
		&success,
		&durationMS,
		&satisfaction,
		&contextJSON,
		&outcomeJSON,
	)
	if err != nil {
		return nil, err
	}

	ts, err := parseTime(timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", timestamp, err)
	}
	mem.Timestamp = ts
	mem.TaskType = models.TaskType(taskType)
	mem.Complexity = models.Complexity(complexity)
	mem.SelectedAgent = models.AgentType(agent)
	mem.Success = success != 0
	mem.Duration = time.Duration(durationMS) * time.Millisecond

	if satisfaction.Valid {
		v := satisfaction.Float64
		mem.Satisfaction = &v
	}
	if contextJSON.Valid && contextJSON.String != "" {
		if err := json.Unmarshal([]byte(contextJSON.String), &mem.Context); err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
	}
	if outcomeJSON.Valid && outcomeJSON.String != "" {
		if err := json.Unmarshal([]byte(outcomeJSON.String), &mem.Outcome); err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}
	}

	return &mem, nil
}

// marshalMap encodes a map as JSON, treating empty as SQL NULL.
func marshalMap(m map[string]interface{}) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// nullFloat converts an optional float to sql.NullFloat64.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// boolToInt converts a bool to the 0/1 representation SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
