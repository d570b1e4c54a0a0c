package router

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/learning"
	"github.com/stewardhq/steward/internal/memory"
	"github.com/stewardhq/steward/pkg/models"
)

// fakeLearner records events and serves a canned suggestion.
type fakeLearner struct {
	suggestion     *learning.Suggestion
	events         []models.LearningEvent
	panicOnSuggest bool
}

func (f *fakeLearner) GetRoutingSuggestion(taskType models.TaskType, complexity models.Complexity, reqCtx models.RequestContext) *learning.Suggestion {
	if f.panicOnSuggest {
		panic("suggestion backend unavailable")
	}
	if f.suggestion != nil {
		return f.suggestion
	}
	return &learning.Suggestion{Reasoning: "no pattern recorded"}
}

func (f *fakeLearner) RecordEvent(event models.LearningEvent) error {
	f.events = append(f.events, event)
	return nil
}

func testRequestContext() models.RequestContext {
	return models.RequestContext{
		UserID:    "user-1",
		SessionID: "session-1",
		Timestamp: time.Now(),
		Urgency:   models.UrgencyNormal,
	}
}

func TestRouteEmptyRequest(t *testing.T) {
	fl := &fakeLearner{}
	r := New(nil, fl, nil)

	_, err := r.Route("   ", testRequestContext())
	if !errors.Is(err, ErrEmptyRequest) {
		t.Fatalf("Route() error = %v, want ErrEmptyRequest", err)
	}
	if len(fl.events) != 0 {
		t.Errorf("events emitted = %d, want 0 for rejected input", len(fl.events))
	}
}

func TestRouteSelectsSpecialist(t *testing.T) {
	fl := &fakeLearner{}
	r := New(nil, fl, nil)

	decision, err := r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}
	if decision.PrimaryAgent != models.AgentBugFixer {
		t.Errorf("PrimaryAgent = %v, want bug_fixer", decision.PrimaryAgent)
	}
	if decision.Confidence < 0 || decision.Confidence > 1 {
		t.Errorf("Confidence = %v, want in [0,1]", decision.Confidence)
	}
	if decision.Reasoning == "" {
		t.Error("Reasoning is empty")
	}
	if len(fl.events) != 1 || fl.events[0].Type != models.EventRoutingDecision {
		t.Errorf("events = %v, want one routing_decision event", fl.events)
	}
}

func TestRoutePropertiesAcrossRequests(t *testing.T) {
	r := New(nil, nil, nil)
	requests := []string{
		"review the auth change",
		"a",
		strings.Repeat("design and implement the distributed migration of the ledger with zero downtime ", 4),
		"???",
	}

	for _, req := range requests {
		decision, err := r.Route(req, testRequestContext())
		if err != nil {
			t.Fatalf("Route(%q) error = %v, want nil", req, err)
		}
		if decision.Confidence < 0 || decision.Confidence > 1 {
			t.Errorf("Route(%q) confidence = %v, want in [0,1]", req, decision.Confidence)
		}
		if decision.Reasoning == "" {
			t.Errorf("Route(%q) reasoning is empty", req)
		}
		if decision.PrimaryAgent == "" {
			t.Errorf("Route(%q) has no primary agent", req)
		}
	}
}

func TestRouteLearnedOverride(t *testing.T) {
	fl := &fakeLearner{suggestion: &learning.Suggestion{
		Agent:      models.AgentTestEngineer,
		Confidence: 0.9,
		Reasoning:  "learned pattern for bug_fix/simple suggests test_engineer",
	}}
	r := New(nil, fl, nil)

	decision, err := r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}
	if decision.PrimaryAgent != models.AgentTestEngineer {
		t.Errorf("PrimaryAgent = %v, want learned override test_engineer", decision.PrimaryAgent)
	}
	if !strings.Contains(decision.Reasoning, "overridden") {
		t.Errorf("Reasoning = %q, want mention of override", decision.Reasoning)
	}
}

func TestRouteLowConfidenceSuggestionIgnored(t *testing.T) {
	fl := &fakeLearner{suggestion: &learning.Suggestion{
		Agent:      models.AgentDocWriter,
		Confidence: 0.4,
		Reasoning:  "weak pattern",
	}}
	r := New(nil, fl, nil)

	decision, err := r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}
	if decision.PrimaryAgent != models.AgentBugFixer {
		t.Errorf("PrimaryAgent = %v, want bug_fixer (suggestion below threshold)", decision.PrimaryAgent)
	}
}

func TestRouteNoQualifyingAgentFallsBack(t *testing.T) {
	// A table where nothing can absorb the request.
	caps := []models.AgentCapability{{
		Agent:         models.AgentDocWriter,
		TaskTypes:     []models.TaskType{models.TaskTypeDocumentation},
		MaxComplexity: models.ComplexitySimple,
	}}
	r := New(caps, nil, nil)

	decision, err := r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}
	if decision.PrimaryAgent != models.AgentGeneral {
		t.Errorf("PrimaryAgent = %v, want general fallback", decision.PrimaryAgent)
	}
	if decision.Confidence > 0.3 {
		t.Errorf("Confidence = %v, want <= 0.3 for fallback", decision.Confidence)
	}
	if !strings.Contains(decision.Reasoning, "fallback") {
		t.Errorf("Reasoning = %q, want mention of fallback", decision.Reasoning)
	}
}

func TestSetCapabilitiesReplacesTable(t *testing.T) {
	r := New(nil, nil, nil)

	decision, err := r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}
	if decision.PrimaryAgent != models.AgentBugFixer {
		t.Fatalf("PrimaryAgent = %v, want bug_fixer before the swap", decision.PrimaryAgent)
	}

	r.SetCapabilities([]models.AgentCapability{{
		Agent:            models.AgentDocWriter,
		TaskTypes:        []models.TaskType{models.TaskTypeDocumentation},
		MaxComplexity:    models.ComplexitySimple,
		Availability:     1.0,
		PerformanceScore: 1.0,
	}})

	decision, err = r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}
	if decision.PrimaryAgent != models.AgentGeneral {
		t.Errorf("PrimaryAgent = %v, want general fallback after the swap", decision.PrimaryAgent)
	}
}

func TestSetCapabilitiesIgnoresEmptyTable(t *testing.T) {
	r := New(nil, nil, nil)
	r.SetCapabilities(nil)

	decision, err := r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}
	if decision.PrimaryAgent != models.AgentBugFixer {
		t.Errorf("PrimaryAgent = %v, want bug_fixer from the built-in table", decision.PrimaryAgent)
	}
}

func TestRouteRecoversFromInternalFailure(t *testing.T) {
	fl := &fakeLearner{panicOnSuggest: true}
	r := New(nil, fl, nil)

	decision, err := r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil (failure recovered locally)", err)
	}
	if decision.PrimaryAgent != models.AgentGeneral {
		t.Errorf("PrimaryAgent = %v, want general on recovered failure", decision.PrimaryAgent)
	}
	if decision.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1", decision.Confidence)
	}
	if decision.FallbackPlan == "" {
		t.Error("FallbackPlan is empty")
	}
}

func TestRouteComplexRequestsGetSupport(t *testing.T) {
	r := New(nil, nil, nil)

	req := strings.Repeat("implement the cross-service billing feature with a distributed migration and zero downtime ", 3)
	decision, err := r.Route(req, testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}
	if decision.Analysis.Complexity.Rank() < models.ComplexityComplex.Rank() {
		t.Fatalf("Complexity = %v, want >= complex", decision.Analysis.Complexity)
	}
	if decision.Strategy != "primary_with_support" {
		t.Errorf("Strategy = %q, want primary_with_support", decision.Strategy)
	}
	if len(decision.SecondaryAgents) == 0 {
		t.Error("SecondaryAgents is empty, want support agent")
	}
}

func TestReportOutcomePersistsAndLearns(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "router-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	store, err := memory.NewStore(filepath.Join(tmpDir, "test.db"), 100)
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v, want nil", err)
	}

	fl := &fakeLearner{}
	r := New(nil, fl, store)

	decision, err := r.Route("fix the bug in login", testRequestContext())
	if err != nil {
		t.Fatalf("Route() error = %v, want nil", err)
	}

	satisfaction := 0.9
	err = r.ReportOutcome("fix the bug in login", decision, Outcome{
		Success:      true,
		Duration:     12 * time.Minute,
		Satisfaction: &satisfaction,
	})
	if err != nil {
		t.Fatalf("ReportOutcome() error = %v, want nil", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v, want nil", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	// One routing event from Route, one completion and one feedback from
	// ReportOutcome.
	if len(fl.events) != 3 {
		t.Fatalf("events = %d, want 3", len(fl.events))
	}
	if fl.events[1].Type != models.EventTaskCompletion {
		t.Errorf("events[1].Type = %v, want task_completion", fl.events[1].Type)
	}
	if fl.events[2].Type != models.EventUserFeedback {
		t.Errorf("events[2].Type = %v, want user_feedback", fl.events[2].Type)
	}

	memories, err := store.QueryBySimilarity(decision.Analysis.TaskType, decision.Analysis.Complexity, 5)
	if err != nil {
		t.Fatalf("QueryBySimilarity() error = %v, want nil", err)
	}
	if len(memories) != 1 || !memories[0].Success {
		t.Errorf("stored memories = %+v, want one successful record", memories)
	}
}

func TestReportCoordinationEmitsPerAgentEvents(t *testing.T) {
	fl := &fakeLearner{}
	r := New(nil, fl, nil)

	plan := &models.TaskDecomposition{
		TaskID:     "task-abc",
		Request:    "overhaul the importer",
		TaskType:   models.TaskTypeFeatureDevelopment,
		Complexity: models.ComplexityComplex,
	}
	result := models.CoordinationResult{
		TaskID:            "task-abc",
		Success:           false,
		TotalDuration:     3 * time.Hour,
		CompletedSubtasks: []string{"task-abc-1"},
		FailedSubtasks:    []string{"task-abc-2"},
		AgentCounts: map[models.AgentType]int{
			models.AgentFeatureDeveloper: 1,
			models.AgentTestEngineer:     1,
		},
		Errors: []string{"test run timed out"},
	}

	if err := r.ReportCoordination(plan, result); err != nil {
		t.Fatalf("ReportCoordination() error = %v, want nil", err)
	}

	var completions, errorEvents int
	for _, event := range fl.events {
		switch event.Type {
		case models.EventTaskCompletion:
			completions++
		case models.EventError:
			errorEvents++
		}
	}
	if completions != 2 {
		t.Errorf("completion events = %d, want 2 (one per agent)", completions)
	}
	if errorEvents != 1 {
		t.Errorf("error events = %d, want 1", errorEvents)
	}
}
