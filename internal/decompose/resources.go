package decompose

import (
	"sort"

	"github.com/stewardhq/steward/pkg/models"
)

// skillResourceFlags maps a required skill to the resource flags it implies.
var skillResourceFlags = map[string]struct {
	cpu     bool
	memory  bool
	network bool
	storage bool
}{
	"programming": {cpu: true},
	"refactoring": {cpu: true},
	"testing":     {cpu: true},
	"data":        {memory: true},
	"analysis":    {memory: true},
	"deployment":  {network: true},
	"monitoring":  {network: true},
	"alerting":    {network: true},
	"database":    {storage: true},
}

// skillTools maps a required skill to the specialized tool tags it needs.
var skillTools = map[string][]string{
	"testing":           {"test_runner"},
	"quality_assurance": {"test_runner"},
	"deployment":        {"ci_cd"},
	"monitoring":        {"metrics_stack"},
	"alerting":          {"metrics_stack"},
	"code_review":       {"static_analysis"},
	"debugging":         {"debugger"},
}

// aggregateResources ORs together the resource flags implied by every
// subtask's required skills and collects de-duplicated tool tags.
func aggregateResources(subtasks []models.Subtask) models.ResourceRequirements {
	var req models.ResourceRequirements
	tools := make(map[string]bool)

	for _, st := range subtasks {
		for _, skill := range st.RequiredSkills {
			if flags, ok := skillResourceFlags[skill]; ok {
				req.CPUIntensive = req.CPUIntensive || flags.cpu
				req.MemoryIntensive = req.MemoryIntensive || flags.memory
				req.NetworkRequired = req.NetworkRequired || flags.network
				req.StorageRequired = req.StorageRequired || flags.storage
			}
			for _, tool := range skillTools[skill] {
				tools[tool] = true
			}
		}
	}

	if len(tools) > 0 {
		req.SpecializedTools = make([]string, 0, len(tools))
		for tool := range tools {
			req.SpecializedTools = append(req.SpecializedTools, tool)
		}
		sort.Strings(req.SpecializedTools)
	}

	return req
}
