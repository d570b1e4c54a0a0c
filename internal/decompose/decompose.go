// Package decompose builds dependency-annotated execution plans from
// classified requests.
package decompose

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stewardhq/steward/internal/graph"
	"github.com/stewardhq/steward/pkg/models"
)

var (
	// ErrEmptyRequest indicates the request text was empty or whitespace.
	ErrEmptyRequest = errors.New("request text is empty")
	// ErrUnknownTaskType indicates the caller passed an unknown task type.
	ErrUnknownTaskType = errors.New("unknown task type")
	// ErrUnknownComplexity indicates the caller passed an unknown complexity.
	ErrUnknownComplexity = errors.New("unknown complexity")
)

// stepWeight scales the duration of subtasks materialized from explicit
// numbered steps in the request text.
const stepWeight = 0.5

// Decomposer breaks classified requests into dependency graphs of subtasks.
// Decomposition is a pure computation: identical inputs always produce
// identical plans.
type Decomposer struct {
	templates map[models.TaskType]PhaseTemplate
	debugLog  func(format string, args ...interface{})
}

// Option configures a Decomposer.
type Option func(*Decomposer)

// WithTemplates replaces individual default templates with overrides.
func WithTemplates(overrides map[models.TaskType]PhaseTemplate) Option {
	return func(d *Decomposer) {
		for taskType, tmpl := range overrides {
			d.templates[taskType] = tmpl
		}
	}
}

// WithDebugLog sets the debug logging function.
func WithDebugLog(fn func(format string, args ...interface{})) Option {
	return func(d *Decomposer) {
		if fn != nil {
			d.debugLog = fn
		}
	}
}

// New creates a Decomposer with the built-in phase templates.
func New(opts ...Option) *Decomposer {
	d := &Decomposer{
		templates: DefaultTemplates(),
		debugLog:  func(format string, args ...interface{}) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decompose builds the execution plan for one classified request.
// Input errors are returned as-is; template defects are propagated rather
// than silently producing an incomplete plan.
func (d *Decomposer) Decompose(request string, taskType models.TaskType, complexity models.Complexity, reqCtx models.RequestContext) (*models.TaskDecomposition, error) {
	if strings.TrimSpace(request) == "" {
		return nil, ErrEmptyRequest
	}
	if !taskType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, taskType)
	}
	if !complexity.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComplexity, complexity)
	}

	tmpl, ok := d.templates[taskType]
	if !ok {
		return nil, fmt.Errorf("no phase template for task type %s", taskType)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("phase template for %s: %w", taskType, err)
	}

	phases, deps := selectPhases(tmpl, complexity)
	hints := ExtractHints(request)
	taskID := "task-" + models.Fingerprint(request)[:12]

	d.debugLog("[decompose] task=%s type=%s complexity=%s phases=%d steps=%d",
		taskID, taskType, complexity, len(phases), len(hints.NumberedSteps))

	subtasks := d.synthesizeSubtasks(taskID, taskType, complexity, phases, deps, hints, reqCtx)

	g := graph.New()
	g.SetDebugLog(d.debugLog)
	if err := g.Build(subtasks); err != nil {
		return nil, fmt.Errorf("build dependency graph: %w", err)
	}

	criticalPath, criticalDuration, err := g.CriticalPath()
	if err != nil {
		return nil, fmt.Errorf("compute critical path: %w", err)
	}

	groups := parallelGroups(tmpl, phases, taskID)

	total := criticalDuration - parallelSavings(subtasks, groups)
	if total < 0 {
		total = 0
	}

	decomposition := &models.TaskDecomposition{
		TaskID:            taskID,
		Request:           request,
		TaskType:          taskType,
		Complexity:        complexity,
		Subtasks:          subtasks,
		EstimatedDuration: total,
		CriticalPath:      criticalPath,
		ParallelGroups:    groups,
		Resources:         aggregateResources(subtasks),
		SuccessCriteria:   successCriteria(tmpl, subtasks),
		CreatedAt:         time.Now(),
		Status:            models.SubtaskStatusPending,
		Progress:          0,
	}

	if err := decomposition.Validate(); err != nil {
		return nil, fmt.Errorf("validate decomposition: %w", err)
	}

	return decomposition, nil
}

// selectPhases applies the complexity rules to the template's phase list:
// simple keeps only the first three phases, critical appends the validation
// and monitoring extension. The returned dependency map is filtered to the
// selected phases.
func selectPhases(tmpl PhaseTemplate, complexity models.Complexity) ([]Phase, map[string][]string) {
	phases := append([]Phase(nil), tmpl.Phases...)

	switch complexity {
	case models.ComplexitySimple:
		if len(phases) > simplePhaseCount {
			phases = phases[:simplePhaseCount]
		}
	case models.ComplexityCritical:
		phases = append(phases, criticalExtension...)
	}

	selected := make(map[string]bool, len(phases))
	for _, p := range phases {
		selected[p.Name] = true
	}

	deps := make(map[string][]string)
	for phase, phaseDeps := range tmpl.Dependencies {
		if !selected[phase] {
			continue
		}
		for _, dep := range phaseDeps {
			if selected[dep] {
				deps[phase] = append(deps[phase], dep)
			}
		}
	}

	if complexity == models.ComplexityCritical && len(tmpl.Phases) > 0 {
		lastBase := tmpl.Phases[len(tmpl.Phases)-1].Name
		deps["validation"] = []string{lastBase}
		deps["monitoring"] = []string{"validation"}
	}

	return phases, deps
}

// synthesizeSubtasks materializes phase subtasks plus any explicit numbered
// steps from the request. Subtask IDs are positional, so identical inputs
// produce identical IDs.
func (d *Decomposer) synthesizeSubtasks(taskID string, taskType models.TaskType, complexity models.Complexity, phases []Phase, deps map[string][]string, hints RequestHints, reqCtx models.RequestContext) []models.Subtask {
	base := float64(d.templates[taskType].BaseDuration) / float64(len(phases))
	multiplier := complexity.Multiplier()

	urgencyBoost := 0.0
	if reqCtx.Urgency == models.UrgencyHigh || reqCtx.Urgency == models.UrgencyCritical {
		urgencyBoost = 0.1
	}

	parallelPhases := make(map[string]bool)
	for _, pair := range d.templates[taskType].ParallelPairs {
		parallelPhases[pair[0]] = true
		parallelPhases[pair[1]] = true
	}

	idForPhase := make(map[string]string, len(phases))
	for i, p := range phases {
		idForPhase[p.Name] = fmt.Sprintf("%s-%d", taskID, i+1)
	}

	subtasks := make([]models.Subtask, 0, len(phases)+len(hints.NumberedSteps))
	for i, p := range phases {
		subtaskType := taskType
		if p.TaskType != "" {
			subtaskType = p.TaskType
		}

		kind := models.DependencySequential
		if parallelPhases[p.Name] {
			kind = models.DependencyParallel
		}

		var dependsOn []string
		for _, dep := range deps[p.Name] {
			dependsOn = append(dependsOn, idForPhase[dep])
		}

		priority := clampPriority(1.0 - float64(i)*0.1 + urgencyBoost)

		subtasks = append(subtasks, models.Subtask{
			ID:                idForPhase[p.Name],
			Title:             p.Title,
			Description:       p.Description,
			TaskType:          subtaskType,
			Complexity:        complexity.Dampen(p.DampenTiers),
			EstimatedDuration: time.Duration(base * multiplier * p.Weight),
			RequiredSkills:    append([]string(nil), p.Skills...),
			DependsOn:         dependsOn,
			DependencyKind:    kind,
			Priority:          priority,
			Status:            models.SubtaskStatusPending,
		})
	}

	// Explicit numbered steps chain after the final phase subtask: they are
	// additional caller-specified work, not replacements for the phases.
	stepKind := models.DependencySequential
	if hints.HasConditional {
		stepKind = models.DependencyConditional
	} else if hints.HasParallel {
		stepKind = models.DependencyParallel
	}

	prevID := ""
	if len(phases) > 0 {
		prevID = idForPhase[phases[len(phases)-1].Name]
	}
	for s, step := range hints.NumberedSteps {
		id := fmt.Sprintf("%s-%d", taskID, len(phases)+s+1)
		var dependsOn []string
		if prevID != "" {
			dependsOn = []string{prevID}
		}
		subtasks = append(subtasks, models.Subtask{
			ID:                id,
			Title:             fmt.Sprintf("Step %d: %s", s+1, step),
			Description:       step,
			TaskType:          taskType,
			Complexity:        complexity.Dampen(1),
			EstimatedDuration: time.Duration(base * multiplier * stepWeight),
			RequiredSkills:    []string{"general"},
			DependsOn:         dependsOn,
			DependencyKind:    stepKind,
			Priority:          clampPriority(0.5 + urgencyBoost),
			Status:            models.SubtaskStatusPending,
		})
		if stepKind != models.DependencyParallel {
			prevID = id
		}
	}

	return subtasks
}

// parallelGroups maps the template's parallel-compatible phase pairs onto
// subtask IDs, keeping only pairs whose phases were both selected.
func parallelGroups(tmpl PhaseTemplate, phases []Phase, taskID string) [][]string {
	index := make(map[string]int, len(phases))
	for i, p := range phases {
		index[p.Name] = i + 1
	}

	var groups [][]string
	for _, pair := range tmpl.ParallelPairs {
		a, okA := index[pair[0]]
		b, okB := index[pair[1]]
		if !okA || !okB {
			continue
		}
		groups = append(groups, []string{
			fmt.Sprintf("%s-%d", taskID, a),
			fmt.Sprintf("%s-%d", taskID, b),
		})
	}
	return groups
}

// parallelSavings sums, over all groups, the time saved by running the
// group concurrently instead of sequentially.
func parallelSavings(subtasks []models.Subtask, groups [][]string) time.Duration {
	durations := make(map[string]time.Duration, len(subtasks))
	for _, st := range subtasks {
		durations[st.ID] = st.EstimatedDuration
	}

	var savings time.Duration
	for _, group := range groups {
		var sum, max time.Duration
		for _, id := range group {
			d := durations[id]
			sum += d
			if d > max {
				max = d
			}
		}
		savings += sum - max
	}
	return savings
}

// successCriteria combines the template's criteria with plan-level ones.
func successCriteria(tmpl PhaseTemplate, subtasks []models.Subtask) []string {
	criteria := append([]string(nil), tmpl.SuccessCriteria...)
	criteria = append(criteria, fmt.Sprintf("all %d subtasks completed", len(subtasks)))
	return criteria
}

// clampPriority bounds a priority score to [0.1, 1.0].
func clampPriority(p float64) float64 {
	if p < 0.1 {
		return 0.1
	}
	if p > 1.0 {
		return 1.0
	}
	return p
}
