package models

import "time"

// EventType categorizes learning events fed into the learning engine.
type EventType string

const (
	// EventRoutingDecision records a routing decision that was made.
	EventRoutingDecision EventType = "routing_decision"
	// EventTaskCompletion records the outcome of an executed task.
	EventTaskCompletion EventType = "task_completion"
	// EventUserFeedback records requester satisfaction with a result.
	EventUserFeedback EventType = "user_feedback"
	// EventError records a failure observed anywhere in the pipeline.
	EventError EventType = "error"
)

// Valid returns true if the event type is a known value.
func (t EventType) Valid() bool {
	switch t {
	case EventRoutingDecision, EventTaskCompletion, EventUserFeedback, EventError:
		return true
	default:
		return false
	}
}

// LearningEvent is one append-only record fed to the learning engine.
// Events are never mutated after creation.
type LearningEvent struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`
	// Type is the event category.
	Type EventType `json:"type"`
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// Payload carries the event's typed data.
	Payload map[string]interface{} `json:"payload,omitempty"`
	// Context carries ambient metadata about the event.
	Context map[string]interface{} `json:"context,omitempty"`
}

// RouterMemory is the persisted record of one routing decision's outcome.
// Immutable after write; removed only by the retention policy.
type RouterMemory struct {
	// ID is the unique identifier for this record.
	ID string `json:"id"`
	// Timestamp is when the routing decision was made.
	Timestamp time.Time `json:"timestamp"`
	// RequestFingerprint is a hash of the normalized request text.
	RequestFingerprint string `json:"request_fingerprint"`
	// TaskType is the classified category of the request.
	TaskType TaskType `json:"task_type"`
	// Complexity is the classified difficulty tier.
	Complexity Complexity `json:"complexity"`
	// SelectedAgent is the agent the router chose.
	SelectedAgent AgentType `json:"selected_agent"`
	// Confidence is the router's confidence at decision time.
	Confidence float64 `json:"confidence"`
	// Success reports whether execution succeeded.
	Success bool `json:"success"`
	// Duration is how long execution took.
	Duration time.Duration `json:"duration"`
	// Satisfaction is the optional user satisfaction score in [0,1].
	Satisfaction *float64 `json:"satisfaction,omitempty"`
	// Context holds ambient metadata captured at decision time.
	Context map[string]interface{} `json:"context,omitempty"`
	// Outcome holds execution outcome details.
	Outcome map[string]interface{} `json:"outcome,omitempty"`
}

// AgentPerformance summarizes one agent's historical results over a window.
type AgentPerformance struct {
	// Agent is the agent type summarized.
	Agent AgentType `json:"agent"`
	// TotalTasks is the number of recorded tasks in the window.
	TotalTasks int `json:"total_tasks"`
	// SuccessRate is completed-successfully over total, in [0,1].
	SuccessRate float64 `json:"success_rate"`
	// AvgDuration is the mean execution time.
	AvgDuration time.Duration `json:"avg_duration"`
	// AvgConfidence is the mean router confidence.
	AvgConfidence float64 `json:"avg_confidence"`
	// AvgSatisfaction is the mean satisfaction score among rated tasks.
	AvgSatisfaction float64 `json:"avg_satisfaction"`
}

// CoordinationResult is what the external agent coordinator reports back
// after executing a TaskDecomposition.
type CoordinationResult struct {
	// TaskID identifies the plan that was executed.
	TaskID string `json:"task_id"`
	// Success reports whether the plan as a whole succeeded.
	Success bool `json:"success"`
	// TotalDuration is the wall-clock time of the whole execution.
	TotalDuration time.Duration `json:"total_duration"`
	// CompletedSubtasks lists IDs of subtasks that completed.
	CompletedSubtasks []string `json:"completed_subtasks,omitempty"`
	// FailedSubtasks lists IDs of subtasks that failed.
	FailedSubtasks []string `json:"failed_subtasks,omitempty"`
	// AgentCounts maps each agent to the number of subtasks it ran.
	AgentCounts map[AgentType]int `json:"agent_counts,omitempty"`
	// Errors lists error messages from failed subtasks.
	Errors []string `json:"errors,omitempty"`
}
