// Package router classifies work requests and selects the agent to handle
// them, consulting learned patterns before the static capability table.
package router

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/internal/learning"
	"github.com/stewardhq/steward/pkg/models"
)

// ErrEmptyRequest indicates the request text was empty or whitespace.
var ErrEmptyRequest = errors.New("request text is empty")

// DefaultConfidenceThreshold is the learned-pattern confidence needed
// before a suggestion overrides the static capability table.
const DefaultConfidenceThreshold = 0.7

// Learner is the learning engine surface the router consumes.
type Learner interface {
	GetRoutingSuggestion(taskType models.TaskType, complexity models.Complexity, reqCtx models.RequestContext) *learning.Suggestion
	RecordEvent(event models.LearningEvent) error
}

// MemoryWriter persists completed routing outcomes.
type MemoryWriter interface {
	Store(mem *models.RouterMemory) (string, error)
}

// Router routes requests to agents. The capability table can be replaced at
// runtime via SetCapabilities; everything else is fixed at construction, so
// concurrent Route calls are safe.
type Router struct {
	mu                  sync.RWMutex
	capabilities        []models.AgentCapability
	learner             Learner
	memory              MemoryWriter
	confidenceThreshold float64
	debugLog            func(format string, args ...interface{})
}

// Option configures a Router.
type Option func(*Router)

// WithConfidenceThreshold overrides the suggestion override threshold.
func WithConfidenceThreshold(threshold float64) Option {
	return func(r *Router) {
		if threshold > 0 {
			r.confidenceThreshold = threshold
		}
	}
}

// WithDebugLog sets the debug logging function.
func WithDebugLog(fn func(format string, args ...interface{})) Option {
	return func(r *Router) {
		if fn != nil {
			r.debugLog = fn
		}
	}
}

// New creates a Router. learner and memory may be nil, in which case the
// router runs on the static capability table alone and skips persistence.
func New(capabilities []models.AgentCapability, learner Learner, memory MemoryWriter, opts ...Option) *Router {
	r := &Router{
		capabilities:        capabilities,
		learner:             learner,
		memory:              memory,
		confidenceThreshold: DefaultConfidenceThreshold,
		debugLog:            func(format string, args ...interface{}) {},
	}
	if len(r.capabilities) == 0 {
		r.capabilities = DefaultCapabilities()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetCapabilities replaces the capability table, typically after the
// capabilities file changes on disk. An empty table is ignored so a failed
// reload never leaves the router without agents.
func (r *Router) SetCapabilities(capabilities []models.AgentCapability) {
	if len(capabilities) == 0 {
		return
	}
	r.mu.Lock()
	r.capabilities = append([]models.AgentCapability(nil), capabilities...)
	r.mu.Unlock()
	r.debugLog("[router] capability table replaced, %d agents", len(capabilities))
}

// Route classifies the request and selects an agent for it. An empty
// request is an input error; any internal failure past input validation is
// recovered into a conservative fallback decision rather than propagated.
func (r *Router) Route(request string, reqCtx models.RequestContext) (decision *models.RoutingDecision, err error) {
	if strings.TrimSpace(request) == "" {
		return nil, ErrEmptyRequest
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.debugLog("[router] recovered during routing: %v", rec)
			decision = r.fallbackDecision(fmt.Sprintf("internal routing failure: %v", rec))
			err = nil
		}
	}()

	analysis := Classify(request)
	decision = r.decide(analysis, reqCtx)

	r.emitRoutingEvent(request, decision)

	return decision, nil
}

// decide maps the analysis to a concrete agent selection, letting a
// confident learned pattern override the static table.
func (r *Router) decide(analysis models.TaskAnalysis, reqCtx models.RequestContext) *models.RoutingDecision {
	primary, found := r.selectFromTable(analysis.TaskType, analysis.Complexity)

	confidence := analysis.Confidence
	reasoning := analysis.Reasoning
	if !found {
		primary = models.AgentGeneral
		confidence = minFloat(confidence, 0.3)
		reasoning = fmt.Sprintf("%s; no agent qualifies for %s at %s, using generic fallback",
			reasoning, analysis.TaskType, analysis.Complexity)
	} else {
		reasoning = fmt.Sprintf("%s; capability table selects %s", reasoning, primary)
	}

	if r.learner != nil {
		suggestion := r.learner.GetRoutingSuggestion(analysis.TaskType, analysis.Complexity, reqCtx)
		if suggestion != nil && suggestion.Agent != "" && suggestion.Confidence >= r.confidenceThreshold {
			r.debugLog("[router] learned override: %s -> %s (confidence %.2f)",
				primary, suggestion.Agent, suggestion.Confidence)
			primary = suggestion.Agent
			confidence = suggestion.Confidence
			reasoning = fmt.Sprintf("%s; overridden by %s", reasoning, suggestion.Reasoning)
		}
	}

	var secondary []models.AgentType
	strategy := "single_agent"
	if analysis.Complexity.Rank() >= models.ComplexityComplex.Rank() {
		strategy = "primary_with_support"
		if primary != models.AgentTestEngineer {
			secondary = append(secondary, models.AgentTestEngineer)
		} else {
			secondary = append(secondary, models.AgentCodeReviewer)
		}
	}

	estimated := analysis.EstimatedDuration
	if reqCtx.SystemLoad > 0.8 {
		// Heavy load stretches the estimate but never the selection.
		estimated = time.Duration(float64(estimated) * 1.5)
	}

	return &models.RoutingDecision{
		PrimaryAgent:        primary,
		SecondaryAgents:     secondary,
		Strategy:            strategy,
		EstimatedCompletion: estimated,
		Resources:           resourcesForAnalysis(analysis),
		FallbackPlan:        fmt.Sprintf("reassign to %s on failure", models.AgentGeneral),
		Reasoning:           reasoning,
		Confidence:          clamp01(confidence),
		Analysis:            analysis,
	}
}

// selectFromTable picks the qualifying agent with the best combined
// availability and performance. Iteration order follows the table, so equal
// scores resolve to the earlier entry.
func (r *Router) selectFromTable(taskType models.TaskType, complexity models.Complexity) (models.AgentType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best models.AgentType
	bestScore := -1.0
	for _, cap := range r.capabilities {
		if !cap.Supports(taskType, complexity) {
			continue
		}
		score := cap.Availability * cap.PerformanceScore
		if score > bestScore {
			bestScore = score
			best = cap.Agent
		}
	}
	return best, bestScore >= 0
}

// fallbackDecision is the conservative decision returned when routing
// cannot complete normally. It is a regular code path, not best-effort
// logging: callers always get a usable decision.
func (r *Router) fallbackDecision(reason string) *models.RoutingDecision {
	analysis := models.TaskAnalysis{
		TaskType:          models.TaskTypeGeneral,
		Complexity:        models.ComplexityMedium,
		EstimatedDuration: durationByComplexity[models.ComplexityMedium],
		RequiredSkills:    []string{"general"},
		Confidence:        0.1,
		Reasoning:         reason,
	}
	return &models.RoutingDecision{
		PrimaryAgent:        models.AgentGeneral,
		Strategy:            "single_agent",
		EstimatedCompletion: analysis.EstimatedDuration,
		FallbackPlan:        "manual triage if the generic agent cannot complete the request",
		Reasoning:           reason,
		Confidence:          0.1,
		Analysis:            analysis,
	}
}

// emitRoutingEvent records the decision with the learning engine.
// Learning failures degrade silently: they must never block routing.
func (r *Router) emitRoutingEvent(request string, decision *models.RoutingDecision) {
	if r.learner == nil {
		return
	}
	event := models.LearningEvent{
		ID:        uuid.New().String(),
		Type:      models.EventRoutingDecision,
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"task_type":  string(decision.Analysis.TaskType),
			"complexity": string(decision.Analysis.Complexity),
			"agent":      string(decision.PrimaryAgent),
			"confidence": decision.Confidence,
		},
		Context: map[string]interface{}{
			"fingerprint": models.Fingerprint(request),
		},
	}
	if err := r.learner.RecordEvent(event); err != nil {
		r.debugLog("[router] record routing event: %v", err)
	}
}

// resourcesForAnalysis derives coarse resource needs from the classified
// task type.
func resourcesForAnalysis(analysis models.TaskAnalysis) models.ResourceRequirements {
	var req models.ResourceRequirements
	switch analysis.TaskType {
	case models.TaskTypeDeployment, models.TaskTypeMonitoring:
		req.NetworkRequired = true
	case models.TaskTypeAnalysis:
		req.MemoryIntensive = true
	case models.TaskTypeTesting, models.TaskTypeBugFix, models.TaskTypeFeatureDevelopment, models.TaskTypeRefactoring:
		req.CPUIntensive = true
	}
	return req
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
