package router

import (
	"fmt"
	"strings"
	"time"

	"github.com/stewardhq/steward/pkg/models"
)

// taskTypeKeywords maps each task type to the keywords that signal it.
// Classification counts matches per type; ties resolve toward the earlier
// entry in models.AllTaskTypes.
var taskTypeKeywords = map[models.TaskType][]string{
	models.TaskTypeCodeReview: {
		"review", "pull request", "pr ", "merge request", "feedback on",
	},
	models.TaskTypeBugFix: {
		"bug", "fix", "broken", "crash", "error", "defect", "regression", "not working",
	},
	models.TaskTypeFeatureDevelopment: {
		"feature", "implement", "add", "build", "create", "new", "support for",
	},
	models.TaskTypeTesting: {
		"test", "coverage", "unit test", "integration test", "e2e", "flaky",
	},
	models.TaskTypeDocumentation: {
		"document", "docs", "readme", "guide", "tutorial", "changelog",
	},
	models.TaskTypeRefactoring: {
		"refactor", "restructure", "clean up", "simplify", "extract", "rename",
	},
	models.TaskTypeDeployment: {
		"deploy", "release", "rollout", "ship", "publish", "rollback",
	},
	models.TaskTypeMonitoring: {
		"monitor", "alert", "dashboard", "metric", "observability", "logging",
	},
	models.TaskTypeAnalysis: {
		"analyze", "investigate", "research", "compare", "evaluate", "why",
	},
}

// technicalIndicators raise the complexity tier when present in the request.
var technicalIndicators = []string{
	"architecture", "distributed", "migration", "scalab", "concurren",
	"security", "performance", "end to end", "end-to-end", "across services",
	"backwards compat", "zero downtime",
}

// Length thresholds for the base complexity tier.
const (
	lengthMedium  = 80
	lengthComplex = 250
)

// requiredSkillsByType maps a task type to the skills routing advertises.
var requiredSkillsByType = map[models.TaskType][]string{
	models.TaskTypeCodeReview:         {"code_review", "analysis"},
	models.TaskTypeBugFix:             {"debugging", "programming"},
	models.TaskTypeFeatureDevelopment: {"programming", "design"},
	models.TaskTypeTesting:            {"testing"},
	models.TaskTypeDocumentation:      {"writing"},
	models.TaskTypeRefactoring:        {"refactoring", "programming"},
	models.TaskTypeDeployment:         {"deployment"},
	models.TaskTypeMonitoring:         {"monitoring"},
	models.TaskTypeAnalysis:           {"analysis"},
	models.TaskTypeGeneral:            {"general"},
}

// durationByComplexity is the routing-level duration estimate per tier.
var durationByComplexity = map[models.Complexity]time.Duration{
	models.ComplexitySimple:   30 * time.Minute,
	models.ComplexityMedium:   2 * time.Hour,
	models.ComplexityComplex:  8 * time.Hour,
	models.ComplexityCritical: 24 * time.Hour,
}

// Classify derives a TaskAnalysis from the request text alone: keyword
// matching selects the task type, length plus technical indicators select
// the complexity.
func Classify(request string) models.TaskAnalysis {
	lower := strings.ToLower(request)

	bestType := models.TaskTypeGeneral
	bestMatches := 0
	for _, taskType := range models.AllTaskTypes {
		matches := 0
		for _, keyword := range taskTypeKeywords[taskType] {
			if strings.Contains(lower, keyword) {
				matches++
			}
		}
		// Strict > keeps the higher-priority type on ties.
		if matches > bestMatches {
			bestMatches = matches
			bestType = taskType
		}
	}

	complexity := complexityFor(lower)

	confidence := 0.3
	reasoning := "no task keywords matched; classified as general"
	if bestMatches > 0 {
		confidence = 0.5 + 0.1*float64(bestMatches)
		if confidence > 0.9 {
			confidence = 0.9
		}
		reasoning = fmt.Sprintf("%d keyword match(es) for %s at %s complexity",
			bestMatches, bestType, complexity)
	}

	return models.TaskAnalysis{
		TaskType:          bestType,
		Complexity:        complexity,
		EstimatedDuration: durationByComplexity[complexity],
		RequiredSkills:    append([]string(nil), requiredSkillsByType[bestType]...),
		Confidence:        confidence,
		Reasoning:         reasoning,
	}
}

// complexityFor derives the complexity tier from request length, raised one
// tier per batch of technical indicators present.
func complexityFor(lower string) models.Complexity {
	base := models.ComplexitySimple
	switch {
	case len(lower) >= lengthComplex:
		base = models.ComplexityComplex
	case len(lower) >= lengthMedium:
		base = models.ComplexityMedium
	}

	indicators := 0
	for _, term := range technicalIndicators {
		if strings.Contains(lower, term) {
			indicators++
		}
	}

	raise := 0
	if indicators >= 1 {
		raise = 1
	}
	if indicators >= 3 {
		raise = 2
	}

	return models.ComplexityFromRank(base.Rank() + raise)
}
