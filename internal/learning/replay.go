package learning

import (
	"fmt"

	"github.com/stewardhq/steward/pkg/models"
)

// ReplayMemories folds persisted routing records back into the engine so a
// fresh process starts with the patterns its history supports. Records must
// arrive oldest first; each one replays as a routing decision, a completion,
// and a feedback event when a satisfaction score was recorded. Returns how
// many records were replayed.
func (e *Engine) ReplayMemories(memories []*models.RouterMemory) int {
	replayed := 0
	for _, mem := range memories {
		if mem == nil {
			continue
		}
		for _, event := range eventsFromMemory(mem) {
			if err := e.RecordEvent(event); err != nil {
				e.debugLog("[learning] replay %s: %v", mem.ID, err)
			}
		}
		replayed++
	}
	return replayed
}

// eventsFromMemory reconstructs the event sequence a routing record implies.
func eventsFromMemory(mem *models.RouterMemory) []models.LearningEvent {
	events := []models.LearningEvent{
		{
			ID:        fmt.Sprintf("%s-replay-routing", mem.ID),
			Type:      models.EventRoutingDecision,
			Timestamp: mem.Timestamp,
			Payload: map[string]interface{}{
				"task_type":  string(mem.TaskType),
				"complexity": string(mem.Complexity),
				"agent":      string(mem.SelectedAgent),
				"confidence": mem.Confidence,
			},
			Context: map[string]interface{}{
				"fingerprint": mem.RequestFingerprint,
				"replayed":    true,
			},
		},
		{
			ID:        fmt.Sprintf("%s-replay-completion", mem.ID),
			Type:      models.EventTaskCompletion,
			Timestamp: mem.Timestamp,
			Payload: map[string]interface{}{
				"task_type": string(mem.TaskType),
				"agent":     string(mem.SelectedAgent),
				"success":   mem.Success,
				"duration":  mem.Duration,
			},
			Context: map[string]interface{}{
				"replayed": true,
			},
		},
	}
	if mem.Satisfaction != nil {
		events = append(events, models.LearningEvent{
			ID:        fmt.Sprintf("%s-replay-feedback", mem.ID),
			Type:      models.EventUserFeedback,
			Timestamp: mem.Timestamp,
			Payload: map[string]interface{}{
				"satisfaction": *mem.Satisfaction,
			},
			Context: map[string]interface{}{
				"replayed": true,
			},
		})
	}
	return events
}
