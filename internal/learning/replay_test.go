package learning

import (
	"fmt"
	"testing"
	"time"

	"github.com/stewardhq/steward/pkg/models"
)

func TestReplayMemoriesRebuildsPatterns(t *testing.T) {
	engine := NewEngine()

	var memories []*models.RouterMemory
	for i := 0; i < 6; i++ {
		memories = append(memories, &models.RouterMemory{
			ID:                 fmt.Sprintf("mem-%04d", i),
			Timestamp:          time.Now().Add(time.Duration(i) * time.Minute),
			RequestFingerprint: "fp",
			TaskType:           models.TaskTypeBugFix,
			Complexity:         models.ComplexitySimple,
			SelectedAgent:      models.AgentBugFixer,
			Confidence:         0.8,
			Success:            true,
			Duration:           10 * time.Minute,
		})
	}

	replayed := engine.ReplayMemories(memories)
	if replayed != 6 {
		t.Fatalf("ReplayMemories() = %d, want 6", replayed)
	}

	pattern := engine.Pattern(models.TaskTypeBugFix, models.ComplexitySimple)
	if pattern == nil {
		t.Fatal("expected pattern after replay, got nil")
	}
	if pattern.Frequency != 6 {
		t.Errorf("Frequency = %d, want 6", pattern.Frequency)
	}
	if pattern.Agent != models.AgentBugFixer {
		t.Errorf("Agent = %v, want bug_fixer", pattern.Agent)
	}

	suggestion := engine.GetRoutingSuggestion(models.TaskTypeBugFix, models.ComplexitySimple, models.RequestContext{})
	if suggestion.Agent != models.AgentBugFixer {
		t.Errorf("suggestion agent = %v, want bug_fixer", suggestion.Agent)
	}
}

func TestReplayMemoriesCarriesSatisfaction(t *testing.T) {
	engine := NewEngine()

	satisfaction := 0.95
	engine.ReplayMemories([]*models.RouterMemory{{
		ID:            "mem-1",
		Timestamp:     time.Now(),
		TaskType:      models.TaskTypeBugFix,
		Complexity:    models.ComplexitySimple,
		SelectedAgent: models.AgentBugFixer,
		Confidence:    0.8,
		Success:       true,
		Duration:      5 * time.Minute,
		Satisfaction:  &satisfaction,
	}})

	if adj := engine.AccuracyAdjustment(); adj <= 0 {
		t.Errorf("AccuracyAdjustment() = %v, want positive after high satisfaction", adj)
	}
	// routing + completion + feedback
	if engine.EventCount() != 3 {
		t.Errorf("EventCount() = %d, want 3", engine.EventCount())
	}
}

func TestReplayMemoriesSkipsNil(t *testing.T) {
	engine := NewEngine()
	replayed := engine.ReplayMemories([]*models.RouterMemory{nil, nil})
	if replayed != 0 {
		t.Errorf("ReplayMemories() = %d, want 0", replayed)
	}
}
