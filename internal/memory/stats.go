package memory

import (
	"fmt"
	"time"

	"github.com/stewardhq/steward/pkg/models"
)

// TaskTypeStats summarizes stored outcomes for one task type.
type TaskTypeStats struct {
	// TaskType is the task type summarized.
	TaskType models.TaskType `json:"task_type"`
	// TotalTasks is the number of recorded tasks in the window.
	TotalTasks int `json:"total_tasks"`
	// SuccessRate is successes over total, in [0,1].
	SuccessRate float64 `json:"success_rate"`
	// AvgDuration is the mean execution time.
	AvgDuration time.Duration `json:"avg_duration"`
	// ByComplexity counts recorded tasks per complexity tier.
	ByComplexity map[models.Complexity]int `json:"by_complexity"`
}

// AgentPerformance summarizes one agent's stored outcomes over the given
// window. A windowDays of zero or less means all time.
func (s *Store) AgentPerformance(agent models.AgentType, windowDays int) (*models.AgentPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*),
			COALESCE(AVG(success), 0),
			COALESCE(AVG(duration_ms), 0),
			COALESCE(AVG(confidence), 0),
			COALESCE(AVG(satisfaction), 0)
		FROM router_memories
		WHERE selected_agent = ?`
	args := []interface{}{string(agent)}

	if windowDays > 0 {
		query += " AND timestamp >= ?"
		args = append(args, formatTime(time.Now().AddDate(0, 0, -windowDays)))
	}

	var (
		total           int
		successRate     float64
		avgDurationMS   float64
		avgConfidence   float64
		avgSatisfaction float64
	)
	err := s.db.QueryRow(query, args...).Scan(
		&total, &successRate, &avgDurationMS, &avgConfidence, &avgSatisfaction,
	)
	if err != nil {
		return nil, fmt.Errorf("query agent performance: %w", err)
	}

	return &models.AgentPerformance{
		Agent:           agent,
		TotalTasks:      total,
		SuccessRate:     successRate,
		AvgDuration:     time.Duration(avgDurationMS) * time.Millisecond,
		AvgConfidence:   avgConfidence,
		AvgSatisfaction: avgSatisfaction,
	}, nil
}

// TaskTypeStatistics aggregates stored outcomes per task type over the given
// window. A windowDays of zero or less means all time.
func (s *Store) TaskTypeStatistics(windowDays int) (map[models.TaskType]*TaskTypeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT task_type, complexity, COUNT(*),
			COALESCE(AVG(success), 0),
			COALESCE(AVG(duration_ms), 0)
		FROM router_memories`
	var args []interface{}

	if windowDays > 0 {
		query += " WHERE timestamp >= ?"
		args = append(args, formatTime(time.Now().AddDate(0, 0, -windowDays)))
	}
	query += " GROUP BY task_type, complexity"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task type statistics: %w", err)
	}
	defer rows.Close()

	stats := make(map[models.TaskType]*TaskTypeStats)
	for rows.Next() {
		var (
			taskType      string
			complexity    string
			count         int
			successRate   float64
			avgDurationMS float64
		)
		if err := rows.Scan(&taskType, &complexity, &count, &successRate, &avgDurationMS); err != nil {
			return nil, fmt.Errorf("scan statistics row: %w", err)
		}

		tt := models.TaskType(taskType)
		entry, ok := stats[tt]
		if !ok {
			entry = &TaskTypeStats{
				TaskType:     tt,
				ByComplexity: make(map[models.Complexity]int),
			}
			stats[tt] = entry
		}

		// Merge the per-complexity group into the task-type aggregate as a
		// count-weighted average.
		prevTotal := entry.TotalTasks
		newTotal := prevTotal + count
		entry.SuccessRate = (entry.SuccessRate*float64(prevTotal) + successRate*float64(count)) / float64(newTotal)
		prevAvgMS := float64(entry.AvgDuration.Milliseconds())
		mergedMS := (prevAvgMS*float64(prevTotal) + avgDurationMS*float64(count)) / float64(newTotal)
		entry.AvgDuration = time.Duration(mergedMS) * time.Millisecond
		entry.TotalTasks = newTotal
		entry.ByComplexity[models.Complexity(complexity)] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statistics rows: %w", err)
	}

	return stats, nil
}
