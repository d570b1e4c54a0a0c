// Package learning derives routing patterns from observed decision outcomes.
//
// The engine consumes LearningEvents emitted by the router and the external
// coordinator, folds them into keyed patterns and per-agent outcome
// aggregates, and answers routing suggestions that can override the static
// capability table once enough evidence accumulates.
package learning

import (
	"fmt"
	"sync"
	"time"

	"github.com/stewardhq/steward/pkg/models"
)

const (
	// DefaultMaxEvents bounds the in-process event buffer.
	DefaultMaxEvents = 1000

	// accuracyStep is how far one feedback event nudges the accuracy scalar.
	accuracyStep = 0.01
	// accuracyMin and accuracyMax clamp the global accuracy adjustment.
	accuracyMin = -0.2
	accuracyMax = 0.2

	// satisfactionHigh and satisfactionLow are the feedback thresholds that
	// nudge the accuracy adjustment up or down.
	satisfactionHigh = 0.8
	satisfactionLow  = 0.4
)

// patternKey identifies a routing pattern.
type patternKey struct {
	taskType   models.TaskType
	complexity models.Complexity
}

// outcomeKey identifies a per-agent outcome aggregate.
type outcomeKey struct {
	taskType models.TaskType
	agent    models.AgentType
}

// errorKey identifies an error pattern.
type errorKey struct {
	errorType string
	severity  string
}

// Pattern is a derived summary of routing outcomes for one
// (task type, complexity) pair.
type Pattern struct {
	// TaskType and Complexity form the pattern key.
	TaskType   models.TaskType   `json:"task_type"`
	Complexity models.Complexity `json:"complexity"`
	// Agent is the most recently routed agent for this pair.
	Agent models.AgentType `json:"agent"`
	// Confidence is the recorded confidence for this pattern, in [0,1].
	Confidence float64 `json:"confidence"`
	// Frequency is how many matching events have been observed.
	Frequency int `json:"frequency"`
	// LastUpdated is when the pattern last changed.
	LastUpdated time.Time `json:"last_updated"`
}

// AgentOutcome aggregates completions for one (task type, agent) pair.
type AgentOutcome struct {
	TaskType models.TaskType  `json:"task_type"`
	Agent    models.AgentType `json:"agent"`
	// Successes and Failures count terminal outcomes.
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
	// AvgDuration is the running average execution time.
	AvgDuration time.Duration `json:"avg_duration"`
}

// Total returns the number of recorded completions.
func (o *AgentOutcome) Total() int {
	return o.Successes + o.Failures
}

// SuccessRate returns successes over total, or 0 with no data.
func (o *AgentOutcome) SuccessRate() float64 {
	total := o.Total()
	if total == 0 {
		return 0
	}
	return float64(o.Successes) / float64(total)
}

// ErrorPattern aggregates observed errors for one (error type, severity) pair.
type ErrorPattern struct {
	ErrorType   string    `json:"error_type"`
	Severity    string    `json:"severity"`
	Frequency   int       `json:"frequency"`
	LastUpdated time.Time `json:"last_updated"`
}

// Engine accumulates learning events and produces routing suggestions.
// All maps are guarded by a single mutex; read-modify-write on a pattern
// key is atomic so concurrent routing calls never lose frequency updates.
type Engine struct {
	mu sync.RWMutex

	patterns      map[patternKey]*Pattern
	outcomes      map[outcomeKey]*AgentOutcome
	errorPatterns map[errorKey]*ErrorPattern

	// events is a bounded buffer of the most recent events, oldest first.
	events    []models.LearningEvent
	maxEvents int

	// accuracyAdjustment is the clamped global scalar nudged by feedback.
	accuracyAdjustment float64

	debugLog func(format string, args ...interface{})
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxEvents overrides the bounded event buffer size.
func WithMaxEvents(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxEvents = n
		}
	}
}

// WithDebugLog sets the debug logging function.
func WithDebugLog(fn func(format string, args ...interface{})) Option {
	return func(e *Engine) {
		if fn != nil {
			e.debugLog = fn
		}
	}
}

// NewEngine creates a new learning engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		patterns:      make(map[patternKey]*Pattern),
		outcomes:      make(map[outcomeKey]*AgentOutcome),
		errorPatterns: make(map[errorKey]*ErrorPattern),
		maxEvents:     DefaultMaxEvents,
		debugLog:      func(format string, args ...interface{}) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordEvent folds one event into the engine's patterns and aggregates.
// Events with an unknown type are rejected.
func (e *Engine) RecordEvent(event models.LearningEvent) error {
	if !event.Type.Valid() {
		return fmt.Errorf("record event: unknown event type %q", event.Type)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.appendEventLocked(event)

	switch event.Type {
	case models.EventRoutingDecision:
		e.recordRoutingDecisionLocked(event)
	case models.EventTaskCompletion:
		e.recordTaskCompletionLocked(event)
	case models.EventUserFeedback:
		e.recordUserFeedbackLocked(event)
	case models.EventError:
		e.recordErrorLocked(event)
	}

	return nil
}

// appendEventLocked adds an event to the bounded buffer, evicting the oldest
// entries once the buffer is full. Assumes the lock is held.
func (e *Engine) appendEventLocked(event models.LearningEvent) {
	e.events = append(e.events, event)
	if over := len(e.events) - e.maxEvents; over > 0 {
		e.events = append([]models.LearningEvent(nil), e.events[over:]...)
	}
}

// recordRoutingDecisionLocked upserts the pattern for the event's
// (task type, complexity) pair. Assumes the lock is held.
func (e *Engine) recordRoutingDecisionLocked(event models.LearningEvent) {
	taskType := models.TaskType(payloadString(event.Payload, "task_type"))
	complexity := models.Complexity(payloadString(event.Payload, "complexity"))
	if !taskType.Valid() || !complexity.Valid() {
		e.debugLog("[learning] routing event with unusable payload: %v", event.Payload)
		return
	}

	key := patternKey{taskType, complexity}
	agent := models.AgentType(payloadString(event.Payload, "agent"))
	confidence := payloadFloat(event.Payload, "confidence")

	if p, ok := e.patterns[key]; ok {
		p.Frequency++
		if agent.Valid() {
			p.Agent = agent
		}
		// Confidence converges toward the latest observation.
		p.Confidence = (p.Confidence*float64(p.Frequency-1) + confidence) / float64(p.Frequency)
		p.LastUpdated = event.Timestamp
		return
	}

	e.patterns[key] = &Pattern{
		TaskType:    taskType,
		Complexity:  complexity,
		Agent:       agent,
		Confidence:  confidence,
		Frequency:   1,
		LastUpdated: event.Timestamp,
	}
}

// recordTaskCompletionLocked upserts the outcome aggregate for the event's
// (task type, agent) pair. Assumes the lock is held.
func (e *Engine) recordTaskCompletionLocked(event models.LearningEvent) {
	taskType := models.TaskType(payloadString(event.Payload, "task_type"))
	agent := models.AgentType(payloadString(event.Payload, "agent"))
	if !taskType.Valid() || !agent.Valid() {
		e.debugLog("[learning] completion event with unusable payload: %v", event.Payload)
		return
	}

	key := outcomeKey{taskType, agent}
	outcome, ok := e.outcomes[key]
	if !ok {
		outcome = &AgentOutcome{TaskType: taskType, Agent: agent}
		e.outcomes[key] = outcome
	}

	success := payloadBool(event.Payload, "success")
	duration := payloadDuration(event.Payload, "duration")

	prevTotal := outcome.Total()
	if success {
		outcome.Successes++
	} else {
		outcome.Failures++
	}
	// Running average over all completions, including this one.
	outcome.AvgDuration = time.Duration(
		(int64(outcome.AvgDuration)*int64(prevTotal) + int64(duration)) / int64(prevTotal+1),
	)
}

// recordUserFeedbackLocked nudges the global accuracy adjustment for strong
// satisfaction signals. Assumes the lock is held.
func (e *Engine) recordUserFeedbackLocked(event models.LearningEvent) {
	satisfaction := payloadFloat(event.Payload, "satisfaction")
	switch {
	case satisfaction >= satisfactionHigh:
		e.accuracyAdjustment += accuracyStep
	case satisfaction <= satisfactionLow:
		e.accuracyAdjustment -= accuracyStep
	}
	if e.accuracyAdjustment > accuracyMax {
		e.accuracyAdjustment = accuracyMax
	}
	if e.accuracyAdjustment < accuracyMin {
		e.accuracyAdjustment = accuracyMin
	}
}

// recordErrorLocked upserts the error pattern for the event's
// (error type, severity) pair. Assumes the lock is held.
func (e *Engine) recordErrorLocked(event models.LearningEvent) {
	errorType := payloadString(event.Payload, "error_type")
	if errorType == "" {
		errorType = "unknown"
	}
	severity := payloadString(event.Payload, "severity")
	if severity == "" {
		severity = "error"
	}

	key := errorKey{errorType, severity}
	if p, ok := e.errorPatterns[key]; ok {
		p.Frequency++
		p.LastUpdated = event.Timestamp
		return
	}
	e.errorPatterns[key] = &ErrorPattern{
		ErrorType:   errorType,
		Severity:    severity,
		Frequency:   1,
		LastUpdated: event.Timestamp,
	}
}

// EventCount returns the number of events in the bounded buffer.
func (e *Engine) EventCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.events)
}

// AccuracyAdjustment returns the current clamped accuracy scalar.
func (e *Engine) AccuracyAdjustment() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.accuracyAdjustment
}

// Pattern returns a copy of the pattern for the given pair, or nil.
func (e *Engine) Pattern(taskType models.TaskType, complexity models.Complexity) *Pattern {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if p, ok := e.patterns[patternKey{taskType, complexity}]; ok {
		copied := *p
		return &copied
	}
	return nil
}

// Payload helpers. Events arrive as loosely typed maps; extraction is
// defensive so a malformed payload degrades rather than panics.

func payloadString(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func payloadFloat(payload map[string]interface{}, key string) float64 {
	switch v := payload[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func payloadBool(payload map[string]interface{}, key string) bool {
	if v, ok := payload[key].(bool); ok {
		return v
	}
	return false
}

func payloadDuration(payload map[string]interface{}, key string) time.Duration {
	switch v := payload[key].(type) {
	case time.Duration:
		return v
	case float64:
		// Durations marshal as integer nanoseconds, so a JSON round trip
		// hands them back as float64 nanoseconds.
		return time.Duration(v)
	case int64:
		return time.Duration(v)
	default:
		return 0
	}
}
