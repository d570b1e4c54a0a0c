package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stewardhq/steward/pkg/models"
)

// newTestStore creates a temporary Store for testing.
// The caller should call cleanup() when done.
func newTestStore(t *testing.T, cap int) (*Store, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "memory-store-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	store, err := NewStore(dbPath, cap)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.Migrate(); err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to migrate: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func testMemory(i int, success bool) *models.RouterMemory {
	return &models.RouterMemory{
		Timestamp:          time.Now().Add(time.Duration(i) * time.Second),
		RequestFingerprint: fmt.Sprintf("fp-%04d", i),
		TaskType:           models.TaskTypeBugFix,
		Complexity:         models.ComplexityMedium,
		SelectedAgent:      models.AgentBugFixer,
		Confidence:         0.8,
		Success:            success,
		Duration:           10 * time.Minute,
	}
}

func TestNewStore(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "memory-store-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "nested", "test.db")
	store, err := NewStore(dbPath, 0)
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}
	defer store.Close()

	if store.Path() != dbPath {
		t.Errorf("Path() = %v, want %v", store.Path(), dbPath)
	}
	if store.RetentionCap() != DefaultRetentionCap {
		t.Errorf("RetentionCap() = %d, want default %d", store.RetentionCap(), DefaultRetentionCap)
	}
}

func TestStoreAndGetRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t, 100)
	defer cleanup()

	satisfaction := 0.9
	mem := testMemory(1, true)
	mem.Satisfaction = &satisfaction
	mem.Context = map[string]interface{}{"urgency": "high"}
	mem.Outcome = map[string]interface{}{"completed": float64(3)}

	id, err := store.Store(mem)
	if err != nil {
		t.Fatalf("Store() error = %v, want nil", err)
	}
	if id == "" {
		t.Fatal("Store() returned empty id")
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want record")
	}
	if got.TaskType != models.TaskTypeBugFix || got.Complexity != models.ComplexityMedium {
		t.Errorf("Get() classification = (%v, %v), want (bug_fix, medium)", got.TaskType, got.Complexity)
	}
	if got.SelectedAgent != models.AgentBugFixer {
		t.Errorf("Get() agent = %v, want bug_fixer", got.SelectedAgent)
	}
	if !got.Success {
		t.Error("Get() success = false, want true")
	}
	if got.Duration != 10*time.Minute {
		t.Errorf("Get() duration = %v, want 10m", got.Duration)
	}
	if got.Satisfaction == nil || *got.Satisfaction != satisfaction {
		t.Errorf("Get() satisfaction = %v, want %v", got.Satisfaction, satisfaction)
	}
	if got.Context["urgency"] != "high" {
		t.Errorf("Get() context = %v, want urgency=high", got.Context)
	}
	if got.Outcome["completed"] != float64(3) {
		t.Errorf("Get() outcome = %v, want completed=3", got.Outcome)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store, cleanup := newTestStore(t, 100)
	defer cleanup()

	got, err := store.Get("does-not-exist")
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestRetentionCapEnforced(t *testing.T) {
	store, cleanup := newTestStore(t, 5)
	defer cleanup()

	for i := 0; i < 12; i++ {
		if _, err := store.Store(testMemory(i, true)); err != nil {
			t.Fatalf("Store() error = %v, want nil", err)
		}

		count, err := store.Count()
		if err != nil {
			t.Fatalf("Count() error = %v, want nil", err)
		}
		if count > 5 {
			t.Fatalf("Count() = %d after insert %d, want <= 5", count, i)
		}
	}

	// The survivors must be the most recent records.
	memories, err := store.QueryBySimilarity(models.TaskTypeBugFix, models.ComplexityMedium, 10)
	if err != nil {
		t.Fatalf("QueryBySimilarity() error = %v, want nil", err)
	}
	if len(memories) != 5 {
		t.Fatalf("QueryBySimilarity() returned %d records, want 5", len(memories))
	}
	if memories[0].RequestFingerprint != "fp-0011" {
		t.Errorf("newest fingerprint = %s, want fp-0011", memories[0].RequestFingerprint)
	}
	if memories[4].RequestFingerprint != "fp-0007" {
		t.Errorf("oldest surviving fingerprint = %s, want fp-0007", memories[4].RequestFingerprint)
	}
}

func TestQueryBySimilarityFilters(t *testing.T) {
	store, cleanup := newTestStore(t, 100)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if _, err := store.Store(testMemory(i, true)); err != nil {
			t.Fatalf("Store() error = %v, want nil", err)
		}
	}
	other := testMemory(10, true)
	other.TaskType = models.TaskTypeTesting
	if _, err := store.Store(other); err != nil {
		t.Fatalf("Store() error = %v, want nil", err)
	}

	memories, err := store.QueryBySimilarity(models.TaskTypeBugFix, models.ComplexityMedium, 2)
	if err != nil {
		t.Fatalf("QueryBySimilarity() error = %v, want nil", err)
	}
	if len(memories) != 2 {
		t.Fatalf("QueryBySimilarity() returned %d records, want 2 (limit)", len(memories))
	}
	for _, mem := range memories {
		if mem.TaskType != models.TaskTypeBugFix {
			t.Errorf("QueryBySimilarity() returned task type %v, want bug_fix", mem.TaskType)
		}
	}

	none, err := store.QueryBySimilarity(models.TaskTypeDeployment, models.ComplexityCritical, 5)
	if err != nil {
		t.Fatalf("QueryBySimilarity() error = %v, want nil", err)
	}
	if len(none) != 0 {
		t.Errorf("QueryBySimilarity() for unseen pair returned %d records, want 0", len(none))
	}
}

func TestAgentPerformanceSuccessRate(t *testing.T) {
	store, cleanup := newTestStore(t, 200)
	defer cleanup()

	for i := 0; i < 50; i++ {
		mem := testMemory(i, i < 45)
		mem.TaskType = models.TaskTypeFeatureDevelopment
		mem.SelectedAgent = models.AgentFeatureDeveloper
		if _, err := store.Store(mem); err != nil {
			t.Fatalf("Store() error = %v, want nil", err)
		}
	}

	perf, err := store.AgentPerformance(models.AgentFeatureDeveloper, 30)
	if err != nil {
		t.Fatalf("AgentPerformance() error = %v, want nil", err)
	}
	if perf.TotalTasks != 50 {
		t.Errorf("TotalTasks = %d, want 50", perf.TotalTasks)
	}
	if perf.SuccessRate < 0.899 || perf.SuccessRate > 0.901 {
		t.Errorf("SuccessRate = %v, want 0.90", perf.SuccessRate)
	}
	if perf.AvgDuration != 10*time.Minute {
		t.Errorf("AvgDuration = %v, want 10m", perf.AvgDuration)
	}
	if perf.AvgConfidence < 0.799 || perf.AvgConfidence > 0.801 {
		t.Errorf("AvgConfidence = %v, want 0.80", perf.AvgConfidence)
	}
}

func TestAgentPerformanceNoData(t *testing.T) {
	store, cleanup := newTestStore(t, 100)
	defer cleanup()

	perf, err := store.AgentPerformance(models.AgentMonitor, 0)
	if err != nil {
		t.Fatalf("AgentPerformance() error = %v, want nil", err)
	}
	if perf.TotalTasks != 0 {
		t.Errorf("TotalTasks = %d, want 0", perf.TotalTasks)
	}
}

func TestTaskTypeStatistics(t *testing.T) {
	store, cleanup := newTestStore(t, 200)
	defer cleanup()

	for i := 0; i < 4; i++ {
		if _, err := store.Store(testMemory(i, i%2 == 0)); err != nil {
			t.Fatalf("Store() error = %v, want nil", err)
		}
	}
	hard := testMemory(10, true)
	hard.Complexity = models.ComplexityComplex
	if _, err := store.Store(hard); err != nil {
		t.Fatalf("Store() error = %v, want nil", err)
	}

	stats, err := store.TaskTypeStatistics(0)
	if err != nil {
		t.Fatalf("TaskTypeStatistics() error = %v, want nil", err)
	}

	entry, ok := stats[models.TaskTypeBugFix]
	if !ok {
		t.Fatal("TaskTypeStatistics() missing bug_fix entry")
	}
	if entry.TotalTasks != 5 {
		t.Errorf("TotalTasks = %d, want 5", entry.TotalTasks)
	}
	if entry.ByComplexity[models.ComplexityMedium] != 4 {
		t.Errorf("ByComplexity[medium] = %d, want 4", entry.ByComplexity[models.ComplexityMedium])
	}
	if entry.ByComplexity[models.ComplexityComplex] != 1 {
		t.Errorf("ByComplexity[complex] = %d, want 1", entry.ByComplexity[models.ComplexityComplex])
	}
	if entry.SuccessRate < 0.599 || entry.SuccessRate > 0.601 {
		t.Errorf("SuccessRate = %v, want 0.60", entry.SuccessRate)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	store, cleanup := newTestStore(t, 100)
	defer cleanup()

	old := testMemory(1, true)
	old.Timestamp = time.Now().AddDate(0, 0, -40)
	if _, err := store.Store(old); err != nil {
		t.Fatalf("Store() error = %v, want nil", err)
	}
	if _, err := store.Store(testMemory(2, true)); err != nil {
		t.Fatalf("Store() error = %v, want nil", err)
	}

	removed, err := store.PurgeOlderThan(30)
	if err != nil {
		t.Fatalf("PurgeOlderThan() error = %v, want nil", err)
	}
	if removed != 1 {
		t.Errorf("PurgeOlderThan() = %d, want 1", removed)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v, want nil", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestPurgeRejectsNonPositiveDays(t *testing.T) {
	store, cleanup := newTestStore(t, 100)
	defer cleanup()

	if _, err := store.PurgeOlderThan(0); err == nil {
		t.Error("PurgeOlderThan(0) error = nil, want error")
	}
}

func TestRecentReturnsReplayOrder(t *testing.T) {
	store, cleanup := newTestStore(t, 100)
	defer cleanup()

	for i := 0; i < 8; i++ {
		if _, err := store.Store(testMemory(i, true)); err != nil {
			t.Fatalf("Store() error = %v, want nil", err)
		}
	}

	memories, err := store.Recent(5)
	if err != nil {
		t.Fatalf("Recent() error = %v, want nil", err)
	}
	if len(memories) != 5 {
		t.Fatalf("Recent() returned %d memories, want 5", len(memories))
	}

	// The five newest records, oldest first.
	for i, mem := range memories {
		want := fmt.Sprintf("fp-%04d", i+3)
		if mem.RequestFingerprint != want {
			t.Errorf("memories[%d].RequestFingerprint = %s, want %s", i, mem.RequestFingerprint, want)
		}
	}
}

func TestRecentEmptyStore(t *testing.T) {
	store, cleanup := newTestStore(t, 100)
	defer cleanup()

	memories, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v, want nil", err)
	}
	if len(memories) != 0 {
		t.Errorf("Recent() returned %d memories, want 0", len(memories))
	}
}
