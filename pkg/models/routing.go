package models

import "time"

// AgentType identifies a logical worker capable of executing tasks.
type AgentType string

const (
	// AgentGeneral is the fallback agent that can absorb any task type.
	AgentGeneral AgentType = "general"
	// AgentCodeReviewer handles code review tasks.
	AgentCodeReviewer AgentType = "code_reviewer"
	// AgentBugFixer handles defect investigation and fixes.
	AgentBugFixer AgentType = "bug_fixer"
	// AgentFeatureDeveloper handles feature development.
	AgentFeatureDeveloper AgentType = "feature_developer"
	// AgentTestEngineer handles test authoring and execution.
	AgentTestEngineer AgentType = "test_engineer"
	// AgentDocWriter handles documentation tasks.
	AgentDocWriter AgentType = "doc_writer"
	// AgentRefactorer handles restructuring work.
	AgentRefactorer AgentType = "refactorer"
	// AgentDeployEngineer handles release and rollout work.
	AgentDeployEngineer AgentType = "deploy_engineer"
	// AgentMonitor handles observability and alerting work.
	AgentMonitor AgentType = "monitor"
	// AgentAnalyst handles investigation and research work.
	AgentAnalyst AgentType = "analyst"
)

// Valid returns true if the agent type is a known value.
func (a AgentType) Valid() bool {
	switch a {
	case AgentGeneral, AgentCodeReviewer, AgentBugFixer, AgentFeatureDeveloper,
		AgentTestEngineer, AgentDocWriter, AgentRefactorer, AgentDeployEngineer,
		AgentMonitor, AgentAnalyst:
		return true
	default:
		return false
	}
}

// AgentCapability declares what one agent type can handle. The capability
// table is configuration, loaded at startup and never patched at runtime.
type AgentCapability struct {
	// Agent is the agent type this capability describes.
	Agent AgentType `json:"agent" yaml:"agent"`
	// TaskTypes lists the task types this agent supports.
	TaskTypes []TaskType `json:"task_types" yaml:"task_types"`
	// MaxComplexity is the highest complexity this agent can absorb.
	MaxComplexity Complexity `json:"max_complexity" yaml:"max_complexity"`
	// Availability is the fraction of capacity currently free, in [0,1].
	Availability float64 `json:"availability" yaml:"availability"`
	// PerformanceScore is the historical quality score, in [0,1].
	PerformanceScore float64 `json:"performance_score" yaml:"performance_score"`
}

// Supports returns true if the agent can handle the given task type at the
// given complexity.
func (c AgentCapability) Supports(taskType TaskType, complexity Complexity) bool {
	if complexity.Rank() > c.MaxComplexity.Rank() {
		return false
	}
	for _, t := range c.TaskTypes {
		if t == taskType {
			return true
		}
	}
	return false
}

// RequestContext carries per-request metadata into a routing call.
// It is immutable once passed to the router and is not persisted as-is.
type RequestContext struct {
	// UserID identifies the requester.
	UserID string `json:"user_id"`
	// SessionID identifies the requester's session.
	SessionID string `json:"session_id"`
	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`
	// Urgency is how quickly the requester needs a result.
	Urgency Urgency `json:"urgency"`
	// Preferences holds optional free-form requester preferences.
	Preferences map[string]string `json:"preferences,omitempty"`
	// History holds a bounded list of the requester's prior requests.
	History []string `json:"history,omitempty"`
	// SystemLoad is a snapshot of system load in [0,1] at request time.
	SystemLoad float64 `json:"system_load"`
}

// TaskAnalysis is the router's classification of one request. It lives only
// for the duration of a routing call.
type TaskAnalysis struct {
	// TaskType is the classified category of the request.
	TaskType TaskType `json:"task_type"`
	// Complexity is the classified difficulty tier.
	Complexity Complexity `json:"complexity"`
	// EstimatedDuration is the expected time to complete.
	EstimatedDuration time.Duration `json:"estimated_duration"`
	// RequiredSkills lists skills the request appears to need.
	RequiredSkills []string `json:"required_skills,omitempty"`
	// Confidence is the classifier's confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Reasoning is a human-readable justification for the classification.
	Reasoning string `json:"reasoning"`
}

// RoutingDecision is the router's output for one request.
type RoutingDecision struct {
	// PrimaryAgent is the agent selected to handle the request.
	PrimaryAgent AgentType `json:"primary_agent"`
	// SecondaryAgents lists supporting agents, if any.
	SecondaryAgents []AgentType `json:"secondary_agents,omitempty"`
	// Strategy labels how primary and secondary agents coordinate.
	Strategy string `json:"strategy"`
	// EstimatedCompletion is the expected time to finish.
	EstimatedCompletion time.Duration `json:"estimated_completion"`
	// Resources describes what the selected agents will need.
	Resources ResourceRequirements `json:"resources"`
	// FallbackPlan describes what to do if the primary agent fails.
	FallbackPlan string `json:"fallback_plan"`
	// Reasoning is a human-readable justification for the decision.
	Reasoning string `json:"reasoning"`
	// Confidence is the router's confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Analysis is the classification this decision was derived from.
	Analysis TaskAnalysis `json:"analysis"`
}
