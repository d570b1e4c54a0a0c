package decompose

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stewardhq/steward/pkg/models"
)

// Phase is one step in a task-type template.
type Phase struct {
	// Name identifies the phase within its template.
	Name string `yaml:"name"`
	// Title is the human-readable subtask title.
	Title string `yaml:"title"`
	// Description explains what the phase covers.
	Description string `yaml:"description"`
	// Weight scales the phase's share of the base duration.
	Weight float64 `yaml:"weight"`
	// Skills lists the skills an agent needs for this phase.
	Skills []string `yaml:"skills"`
	// DampenTiers lowers the subtask complexity below the parent's,
	// bounded at simple. Zero inherits the parent complexity.
	DampenTiers int `yaml:"dampen_tiers"`
	// TaskType overrides the subtask's task type. Empty inherits the
	// parent task type.
	TaskType models.TaskType `yaml:"task_type"`
}

// PhaseTemplate describes how one task type decomposes into phases.
type PhaseTemplate struct {
	// BaseDuration is the total nominal duration split across phases.
	BaseDuration time.Duration `yaml:"base_duration"`
	// Phases lists the ordered phases for this task type.
	Phases []Phase `yaml:"phases"`
	// Dependencies maps a phase name to the phase names it depends on.
	Dependencies map[string][]string `yaml:"dependencies"`
	// ParallelPairs lists phase-name pairs that may run concurrently.
	ParallelPairs [][2]string `yaml:"parallel_pairs"`
	// SuccessCriteria lists plan-level completion criteria.
	SuccessCriteria []string `yaml:"success_criteria"`
}

// UnmarshalYAML decodes a template, accepting base_duration in the
// "2h30m" form time.ParseDuration understands.
func (t *PhaseTemplate) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		BaseDuration    string              `yaml:"base_duration"`
		Phases          []Phase             `yaml:"phases"`
		Dependencies    map[string][]string `yaml:"dependencies"`
		ParallelPairs   [][2]string         `yaml:"parallel_pairs"`
		SuccessCriteria []string            `yaml:"success_criteria"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.BaseDuration != "" {
		d, err := time.ParseDuration(raw.BaseDuration)
		if err != nil {
			return fmt.Errorf("base_duration: %w", err)
		}
		t.BaseDuration = d
	}
	t.Phases = raw.Phases
	t.Dependencies = raw.Dependencies
	t.ParallelPairs = raw.ParallelPairs
	t.SuccessCriteria = raw.SuccessCriteria
	return nil
}

// Validate checks that the template's dependency and parallel declarations
// only reference declared phases. A violation is a configuration defect.
func (t PhaseTemplate) Validate() error {
	if len(t.Phases) == 0 {
		return fmt.Errorf("template has no phases")
	}
	names := make(map[string]bool, len(t.Phases))
	for _, p := range t.Phases {
		if p.Name == "" {
			return fmt.Errorf("template has a phase with no name")
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate phase %q", p.Name)
		}
		names[p.Name] = true
	}
	for phase, deps := range t.Dependencies {
		if !names[phase] {
			return fmt.Errorf("dependency declared for unknown phase %q", phase)
		}
		for _, dep := range deps {
			if !names[dep] {
				return fmt.Errorf("phase %q depends on unknown phase %q", phase, dep)
			}
		}
	}
	for _, pair := range t.ParallelPairs {
		if !names[pair[0]] || !names[pair[1]] {
			return fmt.Errorf("parallel pair %v references unknown phase", pair)
		}
	}
	return nil
}

// simplePhaseCount is how many leading phases a simple task keeps.
const simplePhaseCount = 3

// criticalExtension is appended to every template for critical complexity.
var criticalExtension = []Phase{
	{
		Name:        "validation",
		Title:       "Validation",
		Description: "Validate the result against the original request and acceptance criteria",
		Weight:      0.6,
		Skills:      []string{"testing", "quality_assurance"},
		DampenTiers: 1,
		TaskType:    models.TaskTypeTesting,
	},
	{
		Name:        "monitoring",
		Title:       "Post-completion monitoring",
		Description: "Watch the deployed result for regressions and alert on anomalies",
		Weight:      0.4,
		Skills:      []string{"monitoring", "alerting"},
		DampenTiers: 2,
		TaskType:    models.TaskTypeMonitoring,
	},
}

// DefaultTemplates returns the built-in phase template for every task type.
func DefaultTemplates() map[models.TaskType]PhaseTemplate {
	return map[models.TaskType]PhaseTemplate{
		models.TaskTypeFeatureDevelopment: {
			BaseDuration: 8 * time.Hour,
			Phases: []Phase{
				{Name: "analysis", Title: "Requirements analysis", Description: "Understand the feature request and constraints", Weight: 0.8, Skills: []string{"analysis", "requirements"}, DampenTiers: 1, TaskType: models.TaskTypeAnalysis},
				{Name: "design", Title: "Design", Description: "Design the feature's structure and interfaces", Weight: 1.0, Skills: []string{"architecture", "design"}},
				{Name: "implementation", Title: "Implementation", Description: "Build the feature", Weight: 1.6, Skills: []string{"programming"}},
				{Name: "testing", Title: "Testing", Description: "Write and run tests for the feature", Weight: 0.9, Skills: []string{"testing"}, DampenTiers: 1, TaskType: models.TaskTypeTesting},
				{Name: "documentation", Title: "Documentation", Description: "Document the feature's behavior and usage", Weight: 0.5, Skills: []string{"writing"}, DampenTiers: 2, TaskType: models.TaskTypeDocumentation},
			},
			Dependencies: map[string][]string{
				"design":         {"analysis"},
				"implementation": {"design"},
				"testing":        {"implementation"},
				"documentation":  {"implementation"},
			},
			ParallelPairs: [][2]string{{"testing", "documentation"}},
			SuccessCriteria: []string{
				"feature behaves as requested",
				"tests cover the new behavior",
				"documentation reflects the change",
			},
		},
		models.TaskTypeBugFix: {
			BaseDuration: 4 * time.Hour,
			Phases: []Phase{
				{Name: "investigation", Title: "Investigation", Description: "Reproduce the defect and gather evidence", Weight: 1.0, Skills: []string{"debugging", "analysis"}, DampenTiers: 1, TaskType: models.TaskTypeAnalysis},
				{Name: "diagnosis", Title: "Diagnosis", Description: "Isolate the root cause", Weight: 0.8, Skills: []string{"debugging"}},
				{Name: "fix", Title: "Fix", Description: "Apply and verify the fix locally", Weight: 1.0, Skills: []string{"programming"}},
				{Name: "verification", Title: "Verification", Description: "Confirm the fix resolves the defect without regressions", Weight: 0.7, Skills: []string{"testing"}, DampenTiers: 1, TaskType: models.TaskTypeTesting},
				{Name: "documentation", Title: "Documentation", Description: "Record the root cause and resolution", Weight: 0.3, Skills: []string{"writing"}, DampenTiers: 2, TaskType: models.TaskTypeDocumentation},
			},
			Dependencies: map[string][]string{
				"diagnosis":     {"investigation"},
				"fix":           {"diagnosis"},
				"verification":  {"fix"},
				"documentation": {"fix"},
			},
			ParallelPairs: [][2]string{{"verification", "documentation"}},
			SuccessCriteria: []string{
				"defect no longer reproduces",
				"no regressions introduced",
			},
		},
		models.TaskTypeCodeReview: {
			BaseDuration: 2 * time.Hour,
			Phases: []Phase{
				{Name: "context", Title: "Context gathering", Description: "Read the change and its surrounding code", Weight: 0.6, Skills: []string{"analysis"}, DampenTiers: 1, TaskType: models.TaskTypeAnalysis},
				{Name: "correctness", Title: "Correctness review", Description: "Check logic, edge cases, and error handling", Weight: 1.2, Skills: []string{"code_review"}},
				{Name: "style", Title: "Style review", Description: "Check naming, structure, and project conventions", Weight: 0.6, Skills: []string{"code_review"}},
				{Name: "feedback", Title: "Feedback", Description: "Write up findings and suggested changes", Weight: 0.6, Skills: []string{"writing", "code_review"}},
			},
			Dependencies: map[string][]string{
				"correctness": {"context"},
				"style":       {"context"},
				"feedback":    {"correctness", "style"},
			},
			ParallelPairs: [][2]string{{"correctness", "style"}},
			SuccessCriteria: []string{
				"all changed files reviewed",
				"feedback delivered to the author",
			},
		},
		models.TaskTypeTesting: {
			BaseDuration: 4 * time.Hour,
			Phases: []Phase{
				{Name: "planning", Title: "Test planning", Description: "Decide what to test and how", Weight: 0.6, Skills: []string{"testing", "analysis"}, DampenTiers: 1, TaskType: models.TaskTypeAnalysis},
				{Name: "implementation", Title: "Test implementation", Description: "Write the tests", Weight: 1.4, Skills: []string{"testing", "programming"}},
				{Name: "execution", Title: "Test execution", Description: "Run the suite and triage failures", Weight: 0.8, Skills: []string{"testing"}},
				{Name: "reporting", Title: "Reporting", Description: "Summarize coverage and findings", Weight: 0.4, Skills: []string{"writing"}, DampenTiers: 2, TaskType: models.TaskTypeDocumentation},
			},
			Dependencies: map[string][]string{
				"implementation": {"planning"},
				"execution":      {"implementation"},
				"reporting":      {"execution"},
			},
			SuccessCriteria: []string{
				"planned cases implemented and passing",
				"findings reported",
			},
		},
		models.TaskTypeDocumentation: {
			BaseDuration: 3 * time.Hour,
			Phases: []Phase{
				{Name: "outline", Title: "Outline", Description: "Structure the document and collect sources", Weight: 0.6, Skills: []string{"writing", "analysis"}, DampenTiers: 1, TaskType: models.TaskTypeAnalysis},
				{Name: "drafting", Title: "Drafting", Description: "Write the document", Weight: 1.4, Skills: []string{"writing"}},
				{Name: "review", Title: "Review", Description: "Check accuracy and readability", Weight: 0.6, Skills: []string{"writing", "code_review"}, DampenTiers: 1},
				{Name: "publishing", Title: "Publishing", Description: "Publish to the documentation site", Weight: 0.4, Skills: []string{"writing"}, DampenTiers: 2},
			},
			Dependencies: map[string][]string{
				"drafting":   {"outline"},
				"review":     {"drafting"},
				"publishing": {"review"},
			},
			SuccessCriteria: []string{
				"document published",
				"reviewed for accuracy",
			},
		},
		models.TaskTypeRefactoring: {
			BaseDuration: 6 * time.Hour,
			Phases: []Phase{
				{Name: "analysis", Title: "Structure analysis", Description: "Map the current structure and its problems", Weight: 0.8, Skills: []string{"analysis", "architecture"}, DampenTiers: 1, TaskType: models.TaskTypeAnalysis},
				{Name: "planning", Title: "Refactoring plan", Description: "Sequence the changes to keep the build green", Weight: 0.7, Skills: []string{"architecture"}},
				{Name: "refactoring", Title: "Refactoring", Description: "Apply the restructuring", Weight: 1.6, Skills: []string{"programming", "refactoring"}},
				{Name: "testing", Title: "Regression testing", Description: "Confirm behavior is unchanged", Weight: 0.9, Skills: []string{"testing"}, DampenTiers: 1, TaskType: models.TaskTypeTesting},
				{Name: "documentation", Title: "Documentation", Description: "Update docs affected by the restructuring", Weight: 0.4, Skills: []string{"writing"}, DampenTiers: 2, TaskType: models.TaskTypeDocumentation},
			},
			Dependencies: map[string][]string{
				"planning":      {"analysis"},
				"refactoring":   {"planning"},
				"testing":       {"refactoring"},
				"documentation": {"refactoring"},
			},
			ParallelPairs: [][2]string{{"testing", "documentation"}},
			SuccessCriteria: []string{
				"behavior unchanged",
				"structure problems resolved",
			},
		},
		models.TaskTypeDeployment: {
			BaseDuration: 3 * time.Hour,
			Phases: []Phase{
				{Name: "preparation", Title: "Release preparation", Description: "Assemble artifacts, changelog, and rollback plan", Weight: 0.8, Skills: []string{"deployment"}},
				{Name: "staging", Title: "Staging rollout", Description: "Deploy to staging and smoke test", Weight: 0.8, Skills: []string{"deployment", "testing"}},
				{Name: "verification", Title: "Verification", Description: "Verify staging behavior against the release criteria", Weight: 0.6, Skills: []string{"testing"}, DampenTiers: 1, TaskType: models.TaskTypeTesting},
				{Name: "production", Title: "Production rollout", Description: "Deploy to production with the rollback plan ready", Weight: 0.8, Skills: []string{"deployment"}},
			},
			Dependencies: map[string][]string{
				"staging":      {"preparation"},
				"verification": {"staging"},
				"production":   {"verification"},
			},
			SuccessCriteria: []string{
				"production deploy healthy",
				"rollback plan unused or executed cleanly",
			},
		},
		models.TaskTypeMonitoring: {
			BaseDuration: 3 * time.Hour,
			Phases: []Phase{
				{Name: "requirements", Title: "Signal requirements", Description: "Decide which signals and thresholds matter", Weight: 0.6, Skills: []string{"analysis", "monitoring"}, DampenTiers: 1, TaskType: models.TaskTypeAnalysis},
				{Name: "instrumentation", Title: "Instrumentation", Description: "Emit the required signals", Weight: 1.2, Skills: []string{"programming", "monitoring"}},
				{Name: "dashboards", Title: "Dashboards", Description: "Build views over the new signals", Weight: 0.6, Skills: []string{"monitoring"}},
				{Name: "alerting", Title: "Alerting", Description: "Wire thresholds to the alerting channels", Weight: 0.6, Skills: []string{"monitoring", "alerting"}},
			},
			Dependencies: map[string][]string{
				"instrumentation": {"requirements"},
				"dashboards":      {"instrumentation"},
				"alerting":        {"instrumentation"},
			},
			ParallelPairs: [][2]string{{"dashboards", "alerting"}},
			SuccessCriteria: []string{
				"signals visible on dashboards",
				"alerts fire on threshold breach",
			},
		},
		models.TaskTypeAnalysis: {
			BaseDuration: 4 * time.Hour,
			Phases: []Phase{
				{Name: "collection", Title: "Data collection", Description: "Gather the inputs the question needs", Weight: 0.8, Skills: []string{"analysis", "data"}},
				{Name: "analysis", Title: "Analysis", Description: "Work through the collected material", Weight: 1.4, Skills: []string{"analysis"}},
				{Name: "synthesis", Title: "Synthesis", Description: "Draw conclusions and recommendations", Weight: 0.8, Skills: []string{"analysis", "writing"}},
				{Name: "reporting", Title: "Reporting", Description: "Write up the findings", Weight: 0.5, Skills: []string{"writing"}, DampenTiers: 2, TaskType: models.TaskTypeDocumentation},
			},
			Dependencies: map[string][]string{
				"analysis":  {"collection"},
				"synthesis": {"analysis"},
				"reporting": {"synthesis"},
			},
			SuccessCriteria: []string{
				"question answered with evidence",
				"findings reported",
			},
		},
		models.TaskTypeGeneral: {
			BaseDuration: 2 * time.Hour,
			Phases: []Phase{
				{Name: "analysis", Title: "Analysis", Description: "Understand what the request needs", Weight: 0.7, Skills: []string{"analysis"}, DampenTiers: 1, TaskType: models.TaskTypeAnalysis},
				{Name: "execution", Title: "Execution", Description: "Do the work", Weight: 1.5, Skills: []string{"general"}},
				{Name: "verification", Title: "Verification", Description: "Check the result against the request", Weight: 0.8, Skills: []string{"testing"}, DampenTiers: 1, TaskType: models.TaskTypeTesting},
			},
			Dependencies: map[string][]string{
				"execution":    {"analysis"},
				"verification": {"execution"},
			},
			SuccessCriteria: []string{
				"request satisfied",
			},
		},
	}
}
