package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/router"
	"github.com/stewardhq/steward/pkg/models"
)

var (
	decomposeType       string
	decomposeComplexity string
	decomposeUrgency    string
	decomposeJSON       bool
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <request>",
	Short: "Break a request into a dependency-ordered subtask plan",
	Long: `Classify a request and expand it into subtasks with dependencies,
parallel groups, and a critical path.

Classification can be overridden with --type and --complexity. Numbered
steps inside the request text ("1. do this 2. then that") become extra
subtasks appended to the plan.

Examples:
  steward decompose "add rate limiting to the API"
  steward decompose --type refactoring "untangle the billing module"
  steward decompose --json "fix the bug in login"`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompose,
}

func init() {
	decomposeCmd.Flags().StringVarP(&decomposeType, "type", "t", "", "Override the classified task type")
	decomposeCmd.Flags().StringVarP(&decomposeComplexity, "complexity", "c", "", "Override the classified complexity")
	decomposeCmd.Flags().StringVarP(&decomposeUrgency, "urgency", "u", "normal", "Request urgency (low, normal, high, critical)")
	decomposeCmd.Flags().BoolVar(&decomposeJSON, "json", false, "Print the plan as JSON")
}

func runDecompose(cmd *cobra.Command, args []string) error {
	urgency, err := parseUrgency(decomposeUrgency)
	if err != nil {
		return err
	}

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	analysis := router.Classify(args[0])
	taskType := analysis.TaskType
	complexity := analysis.Complexity

	if decomposeType != "" {
		taskType = models.TaskType(decomposeType)
		if !taskType.Valid() {
			return fmt.Errorf("unknown task type %q", decomposeType)
		}
	}
	if decomposeComplexity != "" {
		complexity = models.Complexity(decomposeComplexity)
		if !complexity.Valid() {
			return fmt.Errorf("unknown complexity %q", decomposeComplexity)
		}
	}

	reqCtx := models.RequestContext{
		Timestamp: time.Now(),
		Urgency:   urgency,
	}

	plan, err := s.decomposer.Decompose(args[0], taskType, complexity, reqCtx)
	if err != nil {
		return err
	}

	if decomposeJSON {
		return printJSON(plan)
	}

	printPlan(plan)
	return nil
}

// printPlan renders a decomposition plan for the terminal.
func printPlan(plan *models.TaskDecomposition) {
	printStatus("✓", fmt.Sprintf("Plan %s: %s / %s, %d subtasks",
		plan.TaskID, plan.TaskType, plan.Complexity, len(plan.Subtasks)), color.FgGreen)
	fmt.Printf("  Request:  %s\n", truncate(plan.Request, 70))
	fmt.Printf("  Estimate: %s (total work %s)\n\n", plan.EstimatedDuration, plan.TotalWork())

	onCriticalPath := make(map[string]bool, len(plan.CriticalPath))
	for _, id := range plan.CriticalPath {
		onCriticalPath[id] = true
	}

	for _, st := range plan.Subtasks {
		marker := " "
		if onCriticalPath[st.ID] {
			marker = color.YellowString("*")
		}
		fmt.Printf("%s %-18s %-28s %8s", marker, st.ID, truncate(st.Title, 28), st.EstimatedDuration)
		if len(st.DependsOn) > 0 {
			fmt.Printf("  after %s", strings.Join(st.DependsOn, ", "))
		}
		fmt.Println()
	}

	fmt.Printf("\nCritical path: %s\n", strings.Join(plan.CriticalPath, " -> "))
	for i, group := range plan.ParallelGroups {
		fmt.Printf("Parallel group %d: %s\n", i+1, strings.Join(group, ", "))
	}
	if len(plan.SuccessCriteria) > 0 {
		fmt.Println("\nSuccess criteria:")
		for _, criterion := range plan.SuccessCriteria {
			fmt.Printf("  - %s\n", criterion)
		}
	}
}
