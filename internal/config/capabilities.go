package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stewardhq/steward/internal/decompose"
	"github.com/stewardhq/steward/pkg/models"
)

// capabilityEntry is one agent row in a capabilities YAML file.
type capabilityEntry struct {
	Agent            string   `yaml:"agent"`
	TaskTypes        []string `yaml:"task_types"`
	MaxComplexity    string   `yaml:"max_complexity"`
	Availability     float64  `yaml:"availability"`
	PerformanceScore float64  `yaml:"performance_score"`
}

// capabilityFile is the top-level shape of a capabilities YAML file.
type capabilityFile struct {
	Agents []capabilityEntry `yaml:"agents"`
}

// LoadCapabilities reads an agent capability table from a YAML file.
// Unknown agent types, task types, or complexity tiers are rejected so a
// typo in the file surfaces at startup instead of at routing time.
func LoadCapabilities(path string) ([]models.AgentCapability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capabilities file: %w", err)
	}

	var file capabilityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(file.Agents) == 0 {
		return nil, fmt.Errorf("%s declares no agents", path)
	}

	capabilities := make([]models.AgentCapability, 0, len(file.Agents))
	seen := make(map[models.AgentType]bool, len(file.Agents))
	for i, entry := range file.Agents {
		agent := models.AgentType(entry.Agent)
		if !agent.Valid() {
			return nil, fmt.Errorf("agents[%d]: unknown agent type %q", i, entry.Agent)
		}
		if seen[agent] {
			return nil, fmt.Errorf("agents[%d]: duplicate agent %q", i, entry.Agent)
		}
		seen[agent] = true

		maxComplexity := models.Complexity(entry.MaxComplexity)
		if !maxComplexity.Valid() {
			return nil, fmt.Errorf("agents[%d] (%s): unknown complexity %q", i, entry.Agent, entry.MaxComplexity)
		}
		if entry.Availability < 0 || entry.Availability > 1 {
			return nil, fmt.Errorf("agents[%d] (%s): availability %v outside [0,1]", i, entry.Agent, entry.Availability)
		}
		if entry.PerformanceScore < 0 || entry.PerformanceScore > 1 {
			return nil, fmt.Errorf("agents[%d] (%s): performance_score %v outside [0,1]", i, entry.Agent, entry.PerformanceScore)
		}

		taskTypes := make([]models.TaskType, 0, len(entry.TaskTypes))
		for _, raw := range entry.TaskTypes {
			taskType := models.TaskType(raw)
			if !taskType.Valid() {
				return nil, fmt.Errorf("agents[%d] (%s): unknown task type %q", i, entry.Agent, raw)
			}
			taskTypes = append(taskTypes, taskType)
		}

		capabilities = append(capabilities, models.AgentCapability{
			Agent:            agent,
			TaskTypes:        taskTypes,
			MaxComplexity:    maxComplexity,
			Availability:     entry.Availability,
			PerformanceScore: entry.PerformanceScore,
		})
	}

	return capabilities, nil
}

// LoadTemplates reads phase-template overrides from a YAML file and merges
// them over the built-in templates. Task types absent from the file keep
// their defaults.
func LoadTemplates(path string) (map[models.TaskType]decompose.PhaseTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading templates file: %w", err)
	}

	var overrides map[string]decompose.PhaseTemplate
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	templates := decompose.DefaultTemplates()
	for raw, tmpl := range overrides {
		taskType := models.TaskType(raw)
		if !taskType.Valid() {
			return nil, fmt.Errorf("templates file has unknown task type %q", raw)
		}
		if err := tmpl.Validate(); err != nil {
			return nil, fmt.Errorf("template for %s: %w", taskType, err)
		}
		templates[taskType] = tmpl
	}

	return templates, nil
}
