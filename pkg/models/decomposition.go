package models

import (
	"fmt"
	"time"
)

// ResourceRequirements aggregates what a plan needs from its environment.
// Flags are ORed across subtasks; tools are de-duplicated.
type ResourceRequirements struct {
	// CPUIntensive indicates heavy computation.
	CPUIntensive bool `json:"cpu_intensive"`
	// MemoryIntensive indicates large working sets.
	MemoryIntensive bool `json:"memory_intensive"`
	// NetworkRequired indicates outbound network access is needed.
	NetworkRequired bool `json:"network_required"`
	// StorageRequired indicates persistent storage is needed.
	StorageRequired bool `json:"storage_required"`
	// SpecializedTools lists tool tags any subtask requires.
	SpecializedTools []string `json:"specialized_tools,omitempty"`
}

// TaskDecomposition is the aggregate execution plan for one complex request.
// It is the handoff artifact consumed by the external agent coordinator.
type TaskDecomposition struct {
	// TaskID is the stable identifier for the whole plan.
	TaskID string `json:"task_id"`
	// Request is the original request text.
	Request string `json:"request"`
	// TaskType is the classified category of the main task.
	TaskType TaskType `json:"task_type"`
	// Complexity is the classified difficulty of the main task.
	Complexity Complexity `json:"complexity"`
	// Subtasks lists every unit of decomposed work.
	Subtasks []Subtask `json:"subtasks"`
	// EstimatedDuration is the critical-path length minus parallel savings.
	EstimatedDuration time.Duration `json:"estimated_duration"`
	// CriticalPath is the ordered subtask IDs on the longest dependency path.
	CriticalPath []string `json:"critical_path"`
	// ParallelGroups lists groups of subtask IDs that may run concurrently.
	ParallelGroups [][]string `json:"parallel_groups,omitempty"`
	// Resources aggregates resource flags across all subtasks.
	Resources ResourceRequirements `json:"resources"`
	// SuccessCriteria lists what must hold for the plan to count as done.
	SuccessCriteria []string `json:"success_criteria,omitempty"`
	// CreatedAt is when the plan was produced.
	CreatedAt time.Time `json:"created_at"`
	// Status is the overall plan status.
	Status SubtaskStatus `json:"status"`
	// Progress is the completion percentage in [0,100].
	Progress float64 `json:"progress"`
}

// Subtask returns the subtask with the given ID, or nil if not present.
func (d *TaskDecomposition) Subtask(id string) *Subtask {
	for i := range d.Subtasks {
		if d.Subtasks[i].ID == id {
			return &d.Subtasks[i]
		}
	}
	return nil
}

// TotalWork returns the sum of all subtask durations, ignoring parallelism.
func (d *TaskDecomposition) TotalWork() time.Duration {
	var total time.Duration
	for _, st := range d.Subtasks {
		total += st.EstimatedDuration
	}
	return total
}

// Validate checks referential integrity: every ID referenced by the critical
// path, the parallel groups, and subtask dependencies must exist in the
// subtask list, and no subtask may appear in more than one parallel group.
func (d *TaskDecomposition) Validate() error {
	ids := make(map[string]bool, len(d.Subtasks))
	for _, st := range d.Subtasks {
		if st.ID == "" {
			return fmt.Errorf("subtask %q has empty id", st.Title)
		}
		if ids[st.ID] {
			return fmt.Errorf("duplicate subtask id %s", st.ID)
		}
		ids[st.ID] = true
	}

	for _, st := range d.Subtasks {
		for _, dep := range st.DependsOn {
			if !ids[dep] {
				return fmt.Errorf("subtask %s depends on unknown subtask %s", st.ID, dep)
			}
		}
	}

	for _, id := range d.CriticalPath {
		if !ids[id] {
			return fmt.Errorf("critical path references unknown subtask %s", id)
		}
	}

	grouped := make(map[string]bool)
	for _, group := range d.ParallelGroups {
		if len(group) < 2 {
			return fmt.Errorf("parallel group %v has fewer than two members", group)
		}
		for _, id := range group {
			if !ids[id] {
				return fmt.Errorf("parallel group references unknown subtask %s", id)
			}
			if grouped[id] {
				return fmt.Errorf("subtask %s appears in more than one parallel group", id)
			}
			grouped[id] = true
		}
	}

	return nil
}
