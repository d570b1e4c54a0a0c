package models

// TaskType categorizes the kind of work a request asks for.
type TaskType string

const (
	// TaskTypeCodeReview is a review of existing code.
	TaskTypeCodeReview TaskType = "code_review"
	// TaskTypeBugFix is a defect investigation and fix.
	TaskTypeBugFix TaskType = "bug_fix"
	// TaskTypeFeatureDevelopment is new feature work.
	TaskTypeFeatureDevelopment TaskType = "feature_development"
	// TaskTypeTesting is test authoring or test execution work.
	TaskTypeTesting TaskType = "testing"
	// TaskTypeDocumentation is documentation work.
	TaskTypeDocumentation TaskType = "documentation"
	// TaskTypeRefactoring is restructuring without behavior change.
	TaskTypeRefactoring TaskType = "refactoring"
	// TaskTypeDeployment is release or rollout work.
	TaskTypeDeployment TaskType = "deployment"
	// TaskTypeMonitoring is observability or alerting work.
	TaskTypeMonitoring TaskType = "monitoring"
	// TaskTypeAnalysis is investigation or research work.
	TaskTypeAnalysis TaskType = "analysis"
	// TaskTypeGeneral is the catch-all for unclassified requests.
	TaskTypeGeneral TaskType = "general"
)

// AllTaskTypes lists every known task type in classification priority order.
// When keyword matching ties, the earlier type wins.
var AllTaskTypes = []TaskType{
	TaskTypeCodeReview,
	TaskTypeBugFix,
	TaskTypeFeatureDevelopment,
	TaskTypeTesting,
	TaskTypeDocumentation,
	TaskTypeRefactoring,
	TaskTypeDeployment,
	TaskTypeMonitoring,
	TaskTypeAnalysis,
	TaskTypeGeneral,
}

// Valid returns true if the task type is a known value.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeCodeReview, TaskTypeBugFix, TaskTypeFeatureDevelopment,
		TaskTypeTesting, TaskTypeDocumentation, TaskTypeRefactoring,
		TaskTypeDeployment, TaskTypeMonitoring, TaskTypeAnalysis, TaskTypeGeneral:
		return true
	default:
		return false
	}
}

// Complexity represents how demanding a task is expected to be.
type Complexity string

const (
	// ComplexitySimple is a small, well-bounded task.
	ComplexitySimple Complexity = "simple"
	// ComplexityMedium is a typical single-agent task.
	ComplexityMedium Complexity = "medium"
	// ComplexityComplex is a large task that usually needs decomposition.
	ComplexityComplex Complexity = "complex"
	// ComplexityCritical is a high-stakes task needing extra validation.
	ComplexityCritical Complexity = "critical"
)

// Valid returns true if the complexity is a known value.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityMedium, ComplexityComplex, ComplexityCritical:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal position of the complexity, from 0 (simple)
// to 3 (critical). Unknown values rank as simple.
func (c Complexity) Rank() int {
	switch c {
	case ComplexityMedium:
		return 1
	case ComplexityComplex:
		return 2
	case ComplexityCritical:
		return 3
	default:
		return 0
	}
}

// ComplexityFromRank returns the complexity at the given ordinal rank,
// clamped to the valid range.
func ComplexityFromRank(rank int) Complexity {
	switch {
	case rank <= 0:
		return ComplexitySimple
	case rank == 1:
		return ComplexityMedium
	case rank == 2:
		return ComplexityComplex
	default:
		return ComplexityCritical
	}
}

// Multiplier returns the duration multiplier applied to phase base durations
// for this complexity.
func (c Complexity) Multiplier() float64 {
	switch c {
	case ComplexitySimple:
		return 0.5
	case ComplexityMedium:
		return 1.0
	case ComplexityComplex:
		return 2.0
	case ComplexityCritical:
		return 3.0
	default:
		return 1.0
	}
}

// Dampen lowers the complexity by the given number of tiers, bounded at simple.
func (c Complexity) Dampen(tiers int) Complexity {
	return ComplexityFromRank(c.Rank() - tiers)
}

// Urgency represents how quickly the requester needs a result.
type Urgency string

const (
	// UrgencyLow means the request can wait.
	UrgencyLow Urgency = "low"
	// UrgencyNormal is the default urgency.
	UrgencyNormal Urgency = "normal"
	// UrgencyHigh means the request should be prioritized.
	UrgencyHigh Urgency = "high"
	// UrgencyCritical means the request blocks other work.
	UrgencyCritical Urgency = "critical"
)

// Valid returns true if the urgency is a known value.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	default:
		return false
	}
}
