package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/memory"
	"github.com/stewardhq/steward/pkg/models"
)

var (
	statsAgent   string
	statsWindow  int
	statsImprove bool
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show routing history statistics",
	Long: `Display aggregate statistics from the memory store.

Shows record counts, per-task-type success rates, and per-agent
performance. With --improve, also sweeps the learning engine's
accumulated evidence back into its routing patterns and reports what
changed.

Examples:
  steward stats
  steward stats --agent bug_fixer --window 30
  steward stats --improve`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsAgent, "agent", "a", "", "Show performance for a single agent")
	statsCmd.Flags().IntVarP(&statsWindow, "window", "w", 0, "Restrict to the last N days (0 = all time)")
	statsCmd.Flags().BoolVar(&statsImprove, "improve", false, "Fold accumulated evidence back into routing patterns")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	if statsAgent != "" {
		agent := models.AgentType(statsAgent)
		if !agent.Valid() {
			return fmt.Errorf("unknown agent %q", statsAgent)
		}
		perf, err := s.store.AgentPerformance(agent, statsWindow)
		if err != nil {
			return fmt.Errorf("agent performance: %w", err)
		}
		if statsJSON {
			return printJSON(perf)
		}
		printAgentPerformance(perf)
		return nil
	}

	count, err := s.store.Count()
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	stats, err := s.store.TaskTypeStatistics(statsWindow)
	if err != nil {
		return fmt.Errorf("task type statistics: %w", err)
	}

	if statsJSON {
		return printJSON(map[string]interface{}{
			"total_records": count,
			"by_task_type":  stats,
		})
	}

	fmt.Printf("Routing records: %d (db: %s)\n\n", count, s.store.Path())
	if count == 0 {
		fmt.Println("No history yet. Route a request with 'steward route <request>'.")
		return nil
	}

	printTaskTypeStats(stats)

	if statsImprove {
		fmt.Println()
		counts := s.engine.ApplyImprovements()
		if len(counts) == 0 {
			fmt.Println("No improvements applicable yet.")
			return nil
		}
		printStatus("✓", "Applied improvements:", color.FgGreen)
		for _, kind := range sortedKeys(counts) {
			fmt.Printf("  %-20s %d\n", kind, counts[kind])
		}
	}
	return nil
}

// printAgentPerformance renders one agent's aggregate record.
func printAgentPerformance(perf *models.AgentPerformance) {
	fmt.Printf("Agent: %s\n", perf.Agent)
	if perf.TotalTasks == 0 {
		fmt.Println("  No recorded tasks.")
		return
	}
	fmt.Printf("  Tasks:          %d\n", perf.TotalTasks)
	fmt.Printf("  Success rate:   %.0f%%\n", perf.SuccessRate*100)
	fmt.Printf("  Avg duration:   %s\n", perf.AvgDuration)
	fmt.Printf("  Avg confidence: %.2f\n", perf.AvgConfidence)
	if perf.AvgSatisfaction > 0 {
		fmt.Printf("  Avg satisfaction: %.2f\n", perf.AvgSatisfaction)
	}
}

// printTaskTypeStats renders per-task-type aggregates, worst success rate
// first so problem areas surface at the top.
func printTaskTypeStats(stats map[models.TaskType]*memory.TaskTypeStats) {
	ordered := make([]*memory.TaskTypeStats, 0, len(stats))
	for _, st := range stats {
		ordered = append(ordered, st)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].SuccessRate != ordered[j].SuccessRate {
			return ordered[i].SuccessRate < ordered[j].SuccessRate
		}
		return ordered[i].TaskType < ordered[j].TaskType
	})

	fmt.Printf("%-22s %6s %9s %12s\n", "TASK TYPE", "TASKS", "SUCCESS", "AVG TIME")
	for _, st := range ordered {
		rate := fmt.Sprintf("%.0f%%", st.SuccessRate*100)
		if st.SuccessRate < 0.5 {
			rate = color.RedString(rate)
		}
		fmt.Printf("%-22s %6d %9s %12s\n", st.TaskType, st.TotalTasks, rate, st.AvgDuration)
	}
}

// sortedKeys returns map keys in stable order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
