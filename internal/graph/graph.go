// Package graph provides a dependency graph over decomposed subtasks.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stewardhq/steward/pkg/models"
)

// ErrCycleDetected indicates a circular dependency was found in the subtask graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// DependencyGraph represents a directed acyclic graph of subtask dependencies.
// Subtasks are nodes, and edges represent "blocked by" relationships.
type DependencyGraph struct {
	mu sync.RWMutex
	// nodes maps subtask ID to the subtask itself.
	nodes map[string]*models.Subtask
	// edges maps subtask ID to IDs of subtasks it depends on (is blocked by).
	edges map[string][]string
	// completed tracks which subtasks have been marked complete.
	completed map[string]bool
	// debugLog is an optional logging function.
	debugLog func(format string, args ...interface{})
}

// New creates a new empty dependency graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		nodes:     make(map[string]*models.Subtask),
		edges:     make(map[string][]string),
		completed: make(map[string]bool),
		debugLog:  func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (g *DependencyGraph) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		g.debugLog = fn
	}
}

// Build constructs the dependency graph from a slice of subtasks.
// Returns an error if a cycle is detected or dependencies reference
// unknown subtasks.
func (g *DependencyGraph) Build(subtasks []models.Subtask) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.debugLog("[graph.Build] building graph from %d subtasks", len(subtasks))

	for i := range subtasks {
		st := &subtasks[i]
		g.nodes[st.ID] = st
		g.edges[st.ID] = nil
	}

	for i := range subtasks {
		st := &subtasks[i]
		for _, depID := range st.DependsOn {
			if _, exists := g.nodes[depID]; !exists {
				return fmt.Errorf("subtask %s depends on unknown subtask %s", st.ID, depID)
			}
			g.edges[st.ID] = append(g.edges[st.ID], depID)
		}
	}

	if g.hasCycleLocked() {
		return ErrCycleDetected
	}

	g.debugLog("[graph.Build] graph built with %d nodes", len(g.nodes))
	return nil
}

// HasCycle returns true if the graph contains a circular dependency.
// Uses depth-first search with coloring to detect back edges.
func (g *DependencyGraph) HasCycle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasCycleLocked()
}

// hasCycleLocked is the internal implementation that assumes the lock is held.
func (g *DependencyGraph) hasCycleLocked() bool {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
	colors := make(map[string]int)
	for id := range g.nodes {
		colors[id] = 0
	}

	var hasCycle bool
	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1

		for _, depID := range g.edges[id] {
			switch colors[depID] {
			case 1:
				// Back edge - cycle detected.
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}

		colors[id] = 2
		return false
	}

	for id := range g.nodes {
		if colors[id] == 0 {
			if visit(id) {
				hasCycle = true
				break
			}
		}
	}

	return hasCycle
}

// TopologicalSort returns subtask IDs in an order where all dependencies
// come before the subtasks that depend on them. Sibling order is
// lexicographic so the result is stable across runs.
// Returns an error if the graph contains a cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.hasCycleLocked() {
		return nil, ErrCycleDetected
	}

	visited := make(map[string]bool)
	var result []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true

		deps := append([]string(nil), g.edges[id]...)
		sort.Strings(deps)
		for _, depID := range deps {
			visit(depID)
		}

		result = append(result, id)
	}

	for _, id := range g.sortedIDsLocked() {
		visit(id)
	}

	return result, nil
}

// CriticalPath returns the ordered subtask IDs on the dependency-respecting
// path with the maximal cumulative estimated duration, along with that
// duration. When two paths tie on duration, the lexicographically smaller
// subtask ID wins at each step, which keeps the result deterministic.
// Returns an error if the graph contains a cycle.
func (g *DependencyGraph) CriticalPath() ([]string, time.Duration, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.hasCycleLocked() {
		return nil, 0, ErrCycleDetected
	}

	// cost[id] is the longest cumulative duration of any path ending at id.
	cost := make(map[string]time.Duration)
	// prev[id] is the predecessor of id on that path, "" at path start.
	prev := make(map[string]string)
	resolved := make(map[string]bool)

	var resolve func(id string) time.Duration
	resolve = func(id string) time.Duration {
		if resolved[id] {
			return cost[id]
		}
		resolved[id] = true

		node := g.nodes[id]
		best := time.Duration(-1)
		bestDep := ""
		deps := append([]string(nil), g.edges[id]...)
		sort.Strings(deps)
		for _, depID := range deps {
			depCost := resolve(depID)
			// Strict > keeps the first (lexicographically smallest) dep on ties.
			if depCost > best {
				best = depCost
				bestDep = depID
			}
		}
		if best < 0 {
			best = 0
		}

		cost[id] = best + node.EstimatedDuration
		prev[id] = bestDep
		return cost[id]
	}

	var endID string
	var endCost time.Duration = -1
	for _, id := range g.sortedIDsLocked() {
		c := resolve(id)
		if c > endCost {
			endCost = c
			endID = id
		}
	}

	if endID == "" {
		return nil, 0, nil
	}

	var path []string
	for id := endID; id != ""; id = prev[id] {
		path = append([]string{id}, path...)
	}

	g.debugLog("[graph.CriticalPath] path=%v duration=%v", path, endCost)
	return path, endCost, nil
}

// GetReady returns subtask IDs that have no unmet dependencies and are not
// yet completed, sorted lexicographically. These may be executed in parallel.
func (g *DependencyGraph) GetReady() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ready []string
	for id, st := range g.nodes {
		if g.completed[id] || st.Status.Terminal() {
			continue
		}

		allDepsComplete := true
		for _, depID := range g.edges[id] {
			if g.completed[depID] {
				continue
			}
			// Fall back to the subtask's own status when the graph has not
			// been told about completion directly.
			if depTask, exists := g.nodes[depID]; !exists || depTask.Status != models.SubtaskStatusCompleted {
				allDepsComplete = false
				break
			}
		}

		if allDepsComplete {
			ready = append(ready, id)
		}
	}

	sort.Strings(ready)
	g.debugLog("[graph.GetReady] %d ready: %v", len(ready), ready)
	return ready
}

// MarkComplete marks a subtask as completed in the graph.
// This affects subsequent calls to GetReady.
func (g *DependencyGraph) MarkComplete(subtaskID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed[subtaskID] = true
}

// GetSubtask returns the subtask for a given ID, or nil if not found.
func (g *DependencyGraph) GetSubtask(subtaskID string) *models.Subtask {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[subtaskID]
}

// Size returns the number of subtasks in the graph.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// GetDependencies returns the IDs of subtasks that the given subtask depends on.
func (g *DependencyGraph) GetDependencies(subtaskID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges[subtaskID]
}

// GetDependents returns the IDs of subtasks that depend on the given subtask.
func (g *DependencyGraph) GetDependents(subtaskID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []string
	for id, deps := range g.edges {
		for _, depID := range deps {
			if depID == subtaskID {
				dependents = append(dependents, id)
				break
			}
		}
	}
	sort.Strings(dependents)
	return dependents
}

// sortedIDsLocked returns all node IDs in lexicographic order.
// Assumes the lock is held.
func (g *DependencyGraph) sortedIDsLocked() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
