package router

import "github.com/stewardhq/steward/pkg/models"

// DefaultCapabilities returns the built-in agent capability table.
// The table is configuration: it is loaded at startup and never mutated.
func DefaultCapabilities() []models.AgentCapability {
	return []models.AgentCapability{
		{
			Agent:            models.AgentCodeReviewer,
			TaskTypes:        []models.TaskType{models.TaskTypeCodeReview, models.TaskTypeAnalysis},
			MaxComplexity:    models.ComplexityComplex,
			Availability:     0.8,
			PerformanceScore: 0.85,
		},
		{
			Agent:            models.AgentBugFixer,
			TaskTypes:        []models.TaskType{models.TaskTypeBugFix, models.TaskTypeTesting},
			MaxComplexity:    models.ComplexityCritical,
			Availability:     0.7,
			PerformanceScore: 0.85,
		},
		{
			Agent:            models.AgentFeatureDeveloper,
			TaskTypes:        []models.TaskType{models.TaskTypeFeatureDevelopment, models.TaskTypeRefactoring},
			MaxComplexity:    models.ComplexityCritical,
			Availability:     0.6,
			PerformanceScore: 0.8,
		},
		{
			Agent:            models.AgentTestEngineer,
			TaskTypes:        []models.TaskType{models.TaskTypeTesting, models.TaskTypeBugFix},
			MaxComplexity:    models.ComplexityComplex,
			Availability:     0.75,
			PerformanceScore: 0.8,
		},
		{
			Agent:            models.AgentDocWriter,
			TaskTypes:        []models.TaskType{models.TaskTypeDocumentation},
			MaxComplexity:    models.ComplexityMedium,
			Availability:     0.9,
			PerformanceScore: 0.75,
		},
		{
			Agent:            models.AgentRefactorer,
			TaskTypes:        []models.TaskType{models.TaskTypeRefactoring, models.TaskTypeFeatureDevelopment},
			MaxComplexity:    models.ComplexityComplex,
			Availability:     0.65,
			PerformanceScore: 0.8,
		},
		{
			Agent:            models.AgentDeployEngineer,
			TaskTypes:        []models.TaskType{models.TaskTypeDeployment, models.TaskTypeMonitoring},
			MaxComplexity:    models.ComplexityCritical,
			Availability:     0.8,
			PerformanceScore: 0.85,
		},
		{
			Agent:            models.AgentMonitor,
			TaskTypes:        []models.TaskType{models.TaskTypeMonitoring, models.TaskTypeAnalysis},
			MaxComplexity:    models.ComplexityMedium,
			Availability:     0.9,
			PerformanceScore: 0.75,
		},
		{
			Agent:            models.AgentAnalyst,
			TaskTypes:        []models.TaskType{models.TaskTypeAnalysis, models.TaskTypeDocumentation},
			MaxComplexity:    models.ComplexityComplex,
			Availability:     0.8,
			PerformanceScore: 0.8,
		},
		{
			Agent: models.AgentGeneral,
			TaskTypes: []models.TaskType{
				models.TaskTypeCodeReview, models.TaskTypeBugFix,
				models.TaskTypeFeatureDevelopment, models.TaskTypeTesting,
				models.TaskTypeDocumentation, models.TaskTypeRefactoring,
				models.TaskTypeDeployment, models.TaskTypeMonitoring,
				models.TaskTypeAnalysis, models.TaskTypeGeneral,
			},
			MaxComplexity:    models.ComplexityMedium,
			Availability:     1.0,
			PerformanceScore: 0.6,
		},
	}
}
