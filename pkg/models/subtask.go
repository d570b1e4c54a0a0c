package models

import "time"

// SubtaskStatus represents the lifecycle state of a subtask.
// Transitions are owned by the component driving execution; this core
// never mutates status after handing a plan off.
type SubtaskStatus string

const (
	// SubtaskStatusPending indicates the subtask has not started.
	SubtaskStatusPending SubtaskStatus = "pending"
	// SubtaskStatusInProgress indicates the subtask is being worked on.
	SubtaskStatusInProgress SubtaskStatus = "in_progress"
	// SubtaskStatusCompleted indicates the subtask finished successfully.
	SubtaskStatusCompleted SubtaskStatus = "completed"
	// SubtaskStatusFailed indicates the subtask failed.
	SubtaskStatusFailed SubtaskStatus = "failed"
	// SubtaskStatusBlocked indicates the subtask cannot proceed.
	SubtaskStatusBlocked SubtaskStatus = "blocked"
	// SubtaskStatusCancelled indicates the subtask was abandoned.
	SubtaskStatusCancelled SubtaskStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s SubtaskStatus) Valid() bool {
	switch s {
	case SubtaskStatusPending, SubtaskStatusInProgress, SubtaskStatusCompleted,
		SubtaskStatusFailed, SubtaskStatusBlocked, SubtaskStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
func (s SubtaskStatus) Terminal() bool {
	switch s {
	case SubtaskStatusCompleted, SubtaskStatusFailed, SubtaskStatusCancelled:
		return true
	default:
		return false
	}
}

// DependencyKind describes how a subtask relates to the subtasks it depends on.
type DependencyKind string

const (
	// DependencySequential means the subtask runs after its dependencies.
	DependencySequential DependencyKind = "sequential"
	// DependencyParallel means the subtask may run alongside its siblings.
	DependencyParallel DependencyKind = "parallel"
	// DependencyConditional means the subtask runs only if a condition holds.
	DependencyConditional DependencyKind = "conditional"
	// DependencyResourceShared means the subtask contends for a shared resource.
	DependencyResourceShared DependencyKind = "resource_shared"
)

// Valid returns true if the dependency kind is a known value.
func (k DependencyKind) Valid() bool {
	switch k {
	case DependencySequential, DependencyParallel, DependencyConditional, DependencyResourceShared:
		return true
	default:
		return false
	}
}

// Subtask is one unit of decomposed work within a TaskDecomposition.
type Subtask struct {
	// ID is the stable identifier for this subtask. Deterministic for a
	// given decomposition input.
	ID string `json:"id"`
	// Title is the short description of the subtask.
	Title string `json:"title"`
	// Description provides detailed information about the subtask.
	Description string `json:"description,omitempty"`
	// TaskType is the category of work for this subtask.
	TaskType TaskType `json:"task_type"`
	// Complexity is the expected difficulty of this subtask.
	Complexity Complexity `json:"complexity"`
	// EstimatedDuration is the expected time to complete.
	EstimatedDuration time.Duration `json:"estimated_duration"`
	// RequiredSkills lists the skills an agent needs for this subtask.
	RequiredSkills []string `json:"required_skills,omitempty"`
	// AssignedAgent is the agent selected for this subtask, if any.
	AssignedAgent AgentType `json:"assigned_agent,omitempty"`
	// DependsOn lists subtask IDs that must complete before this one.
	DependsOn []string `json:"depends_on,omitempty"`
	// DependencyKind describes how this subtask relates to its dependencies.
	DependencyKind DependencyKind `json:"dependency_kind"`
	// Priority is a relative priority score in [0,1].
	Priority float64 `json:"priority"`
	// Status is the current lifecycle state.
	Status SubtaskStatus `json:"status"`
}
