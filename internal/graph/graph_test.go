package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/stewardhq/steward/pkg/models"
)

func subtask(id string, duration time.Duration, deps ...string) models.Subtask {
	return models.Subtask{
		ID:                id,
		Title:             id,
		EstimatedDuration: duration,
		DependsOn:         deps,
		Status:            models.SubtaskStatusPending,
	}
}

func TestBuildRejectsUnknownDependency(t *testing.T) {
	g := New()
	err := g.Build([]models.Subtask{
		subtask("a", time.Hour),
		subtask("b", time.Hour, "missing"),
	})
	if err == nil {
		t.Fatal("Build() error = nil, want unknown dependency error")
	}
}

func TestBuildRejectsCycle(t *testing.T) {
	g := New()
	err := g.Build([]models.Subtask{
		subtask("a", time.Hour, "b"),
		subtask("b", time.Hour, "a"),
	})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("Build() error = %v, want ErrCycleDetected", err)
	}
}

func TestTopologicalSortOrdersDependenciesFirst(t *testing.T) {
	g := New()
	err := g.Build([]models.Subtask{
		subtask("c", time.Hour, "b"),
		subtask("b", time.Hour, "a"),
		subtask("a", time.Hour),
	})
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v, want nil", err)
	}

	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	if pos["a"] > pos["b"] || pos["b"] > pos["c"] {
		t.Errorf("TopologicalSort() = %v, want a before b before c", order)
	}
}

func TestCriticalPathPicksLongestPath(t *testing.T) {
	// a(1h) -> b(2h) -> d(1h)
	// a(1h) -> c(30m) -> d(1h)
	g := New()
	err := g.Build([]models.Subtask{
		subtask("a", time.Hour),
		subtask("b", 2*time.Hour, "a"),
		subtask("c", 30*time.Minute, "a"),
		subtask("d", time.Hour, "b", "c"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}

	path, total, err := g.CriticalPath()
	if err != nil {
		t.Fatalf("CriticalPath() error = %v, want nil", err)
	}

	want := []string{"a", "b", "d"}
	if len(path) != len(want) {
		t.Fatalf("CriticalPath() = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("CriticalPath() = %v, want %v", path, want)
		}
	}
	if total != 4*time.Hour {
		t.Errorf("CriticalPath() duration = %v, want 4h", total)
	}
}

func TestCriticalPathTieBreaksLexicographically(t *testing.T) {
	// Two equal-cost paths into d; the lexicographically smaller branch wins.
	g := New()
	err := g.Build([]models.Subtask{
		subtask("a", time.Hour),
		subtask("b", time.Hour),
		subtask("d", time.Hour, "a", "b"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}

	path, _, err := g.CriticalPath()
	if err != nil {
		t.Fatalf("CriticalPath() error = %v, want nil", err)
	}
	if len(path) != 2 || path[0] != "a" || path[1] != "d" {
		t.Errorf("CriticalPath() = %v, want [a d]", path)
	}
}

func TestCriticalPathEmptyGraph(t *testing.T) {
	g := New()
	path, total, err := g.CriticalPath()
	if err != nil {
		t.Fatalf("CriticalPath() error = %v, want nil", err)
	}
	if len(path) != 0 || total != 0 {
		t.Errorf("CriticalPath() = %v, %v, want empty, 0", path, total)
	}
}

func TestGetReadyRespectsCompletion(t *testing.T) {
	g := New()
	err := g.Build([]models.Subtask{
		subtask("a", time.Hour),
		subtask("b", time.Hour, "a"),
		subtask("c", time.Hour, "a"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}

	ready := g.GetReady()
	if len(ready) != 1 || ready[0] != "a" {
		t.Fatalf("GetReady() = %v, want [a]", ready)
	}

	g.MarkComplete("a")
	ready = g.GetReady()
	if len(ready) != 2 || ready[0] != "b" || ready[1] != "c" {
		t.Errorf("GetReady() after completing a = %v, want [b c]", ready)
	}
}

func TestGetDependents(t *testing.T) {
	g := New()
	err := g.Build([]models.Subtask{
		subtask("a", time.Hour),
		subtask("b", time.Hour, "a"),
		subtask("c", time.Hour, "a"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}

	deps := g.GetDependents("a")
	if len(deps) != 2 || deps[0] != "b" || deps[1] != "c" {
		t.Errorf("GetDependents(a) = %v, want [b c]", deps)
	}
}
