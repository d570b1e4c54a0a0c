package learning

import (
	"fmt"
	"sort"

	"github.com/stewardhq/steward/pkg/models"
)

const (
	// warningSuccessRate is the success rate below which an agent is flagged.
	warningSuccessRate = 0.3
	// warningMinSamples is the sample size needed before flagging an agent.
	warningMinSamples = 5
	// alternativeSuccessRate is the success rate an agent needs to be
	// surfaced as an alternative.
	alternativeSuccessRate = 0.7
	// maxAlternatives bounds the alternatives list.
	maxAlternatives = 3
)

// Suggestion is the engine's answer for one (task type, complexity) pair.
type Suggestion struct {
	// Agent is the recommended agent, empty when no pattern exists.
	Agent models.AgentType `json:"agent,omitempty"`
	// Confidence is the pattern's confidence adjusted by the global
	// accuracy scalar, clamped to [0,1].
	Confidence float64 `json:"confidence"`
	// Reasoning explains where the suggestion came from.
	Reasoning string `json:"reasoning"`
	// Alternatives lists other agents with strong records for this task type.
	Alternatives []models.AgentType `json:"alternatives,omitempty"`
	// Warnings flags agents with poor records for this task type.
	Warnings []string `json:"warnings,omitempty"`
}

// GetRoutingSuggestion looks up the learned pattern for the given pair and
// ranks agents by their recorded success rate for the task type. With no
// recorded pattern it returns an empty agent and a "no pattern" reasoning,
// never an error. The request context is observational for now: patterns are
// keyed by (task type, complexity) alone.
func (e *Engine) GetRoutingSuggestion(taskType models.TaskType, complexity models.Complexity, reqCtx models.RequestContext) *Suggestion {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if reqCtx.SessionID != "" {
		e.debugLog("[learning] suggestion requested for %s/%s (session %s)",
			taskType, complexity, reqCtx.SessionID)
	}

	suggestion := &Suggestion{}

	if p, ok := e.patterns[patternKey{taskType, complexity}]; ok && p.Agent != "" {
		suggestion.Agent = p.Agent
		suggestion.Confidence = clamp01(p.Confidence + e.accuracyAdjustment)
		suggestion.Reasoning = fmt.Sprintf(
			"learned pattern for %s/%s suggests %s (%d observations)",
			taskType, complexity, p.Agent, p.Frequency)
	} else {
		suggestion.Reasoning = fmt.Sprintf("no pattern recorded for %s/%s", taskType, complexity)
	}

	// Rank agents by success rate for this task type.
	type ranked struct {
		agent models.AgentType
		rate  float64
		total int
	}
	var agents []ranked
	for key, outcome := range e.outcomes {
		if key.taskType != taskType {
			continue
		}
		agents = append(agents, ranked{key.agent, outcome.SuccessRate(), outcome.Total()})
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].rate != agents[j].rate {
			return agents[i].rate > agents[j].rate
		}
		return agents[i].agent < agents[j].agent
	})

	for _, r := range agents {
		if r.rate >= alternativeSuccessRate && r.agent != suggestion.Agent &&
			len(suggestion.Alternatives) < maxAlternatives {
			suggestion.Alternatives = append(suggestion.Alternatives, r.agent)
		}
		if r.rate < warningSuccessRate && r.total >= warningMinSamples {
			suggestion.Warnings = append(suggestion.Warnings, fmt.Sprintf(
				"%s has a %.0f%% success rate over %d %s tasks",
				r.agent, r.rate*100, r.total, taskType))
		}
	}

	return suggestion
}

// ImprovementCounts reports how many adjustments ApplyImprovements made,
// keyed by improvement kind.
type ImprovementCounts map[string]int

// ApplyImprovements sweeps the accumulated evidence and folds it back into
// the patterns: well-observed patterns gain confidence, patterns whose agent
// underperforms are repointed at the best-performing agent for the task
// type, and the feedback-driven accuracy adjustment is folded in.
func (e *Engine) ApplyImprovements() ImprovementCounts {
	e.mu.Lock()
	defer e.mu.Unlock()

	counts := ImprovementCounts{}

	// Best recorded agent per task type, for repointing weak patterns.
	best := make(map[models.TaskType]*AgentOutcome)
	for key, outcome := range e.outcomes {
		if outcome.Total() < warningMinSamples {
			continue
		}
		cur := best[key.taskType]
		if cur == nil || outcome.SuccessRate() > cur.SuccessRate() {
			best[key.taskType] = outcome
		}
	}

	for _, p := range e.patterns {
		// Frequently confirmed patterns earn a small confidence boost.
		if p.Frequency >= 10 && p.Confidence < 0.95 {
			p.Confidence = clamp01(p.Confidence + 0.05)
			counts["pattern_confidence"]++
		}

		if top := best[p.TaskType]; top != nil && top.Agent != p.Agent &&
			top.SuccessRate() >= alternativeSuccessRate {
			if cur, ok := e.outcomes[outcomeKey{p.TaskType, p.Agent}]; ok &&
				cur.Total() >= warningMinSamples && cur.SuccessRate() < warningSuccessRate {
				p.Agent = top.Agent
				counts["agent_preference"]++
			}
		}
	}

	if e.accuracyAdjustment != 0 {
		counts["accuracy_adjustment"]++
	}

	return counts
}

// clamp01 bounds a value to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
