package router

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/pkg/models"
)

// Outcome is what the caller reports once a routed request finished
// executing.
type Outcome struct {
	// Success reports whether execution succeeded.
	Success bool
	// Duration is how long execution took.
	Duration time.Duration
	// Satisfaction is the optional user satisfaction score in [0,1].
	Satisfaction *float64
}

// ReportOutcome persists the completed decision into the memory store and
// feeds a task-completion event to the learning engine, closing the
// feedback loop. Persistence failures are returned to the caller;
// learning failures only degrade.
func (r *Router) ReportOutcome(request string, decision *models.RoutingDecision, outcome Outcome) error {
	if decision == nil {
		return fmt.Errorf("report outcome: nil decision")
	}

	if r.memory != nil {
		mem := &models.RouterMemory{
			ID:                 uuid.New().String(),
			Timestamp:          time.Now(),
			RequestFingerprint: models.Fingerprint(request),
			TaskType:           decision.Analysis.TaskType,
			Complexity:         decision.Analysis.Complexity,
			SelectedAgent:      decision.PrimaryAgent,
			Confidence:         decision.Confidence,
			Success:            outcome.Success,
			Duration:           outcome.Duration,
			Satisfaction:       outcome.Satisfaction,
		}
		if _, err := r.memory.Store(mem); err != nil {
			return fmt.Errorf("store routing memory: %w", err)
		}
	}

	if r.learner != nil {
		event := models.LearningEvent{
			ID:        uuid.New().String(),
			Type:      models.EventTaskCompletion,
			Timestamp: time.Now(),
			Payload: map[string]interface{}{
				"task_type": string(decision.Analysis.TaskType),
				"agent":     string(decision.PrimaryAgent),
				"success":   outcome.Success,
				"duration":  outcome.Duration,
			},
		}
		if err := r.learner.RecordEvent(event); err != nil {
			r.debugLog("[router] record completion event: %v", err)
		}

		if outcome.Satisfaction != nil {
			feedback := models.LearningEvent{
				ID:        uuid.New().String(),
				Type:      models.EventUserFeedback,
				Timestamp: time.Now(),
				Payload:   map[string]interface{}{"satisfaction": *outcome.Satisfaction},
			}
			if err := r.learner.RecordEvent(feedback); err != nil {
				r.debugLog("[router] record feedback event: %v", err)
			}
		}
	}

	return nil
}

// ReportCoordination folds an executed decomposition's result back into the
// learning engine and memory store. Each agent that ran subtasks yields one
// task-completion event; failed executions additionally yield an error event.
func (r *Router) ReportCoordination(plan *models.TaskDecomposition, result models.CoordinationResult) error {
	if plan == nil {
		return fmt.Errorf("report coordination: nil plan")
	}

	if r.learner != nil {
		for agent, count := range result.AgentCounts {
			event := models.LearningEvent{
				ID:        uuid.New().String(),
				Type:      models.EventTaskCompletion,
				Timestamp: time.Now(),
				Payload: map[string]interface{}{
					"task_type": string(plan.TaskType),
					"agent":     string(agent),
					"success":   result.Success,
					"duration":  result.TotalDuration,
				},
				Context: map[string]interface{}{
					"task_id":       plan.TaskID,
					"subtask_count": count,
				},
			}
			if err := r.learner.RecordEvent(event); err != nil {
				r.debugLog("[router] record coordination event for %s: %v", agent, err)
			}
		}

		if !result.Success {
			for _, msg := range result.Errors {
				event := models.LearningEvent{
					ID:        uuid.New().String(),
					Type:      models.EventError,
					Timestamp: time.Now(),
					Payload: map[string]interface{}{
						"error_type": "subtask_failure",
						"severity":   "error",
						"message":    msg,
					},
				}
				if err := r.learner.RecordEvent(event); err != nil {
					r.debugLog("[router] record error event: %v", err)
				}
			}
		}
	}

	if r.memory != nil {
		mem := &models.RouterMemory{
			ID:                 uuid.New().String(),
			Timestamp:          time.Now(),
			RequestFingerprint: models.Fingerprint(plan.Request),
			TaskType:           plan.TaskType,
			Complexity:         plan.Complexity,
			SelectedAgent:      dominantAgent(result.AgentCounts),
			Success:            result.Success,
			Duration:           result.TotalDuration,
			Outcome: map[string]interface{}{
				"completed": len(result.CompletedSubtasks),
				"failed":    len(result.FailedSubtasks),
			},
		}
		if _, err := r.memory.Store(mem); err != nil {
			return fmt.Errorf("store coordination memory: %w", err)
		}
	}

	return nil
}

// dominantAgent returns the agent that ran the most subtasks, ties resolved
// toward the lexicographically smaller agent name.
func dominantAgent(counts map[models.AgentType]int) models.AgentType {
	best := models.AgentGeneral
	bestCount := -1
	for agent, count := range counts {
		if count > bestCount || (count == bestCount && agent < best) {
			best = agent
			bestCount = count
		}
	}
	return best
}
