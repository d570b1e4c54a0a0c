package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/router"
	"github.com/stewardhq/steward/pkg/models"
)

var (
	reportSuccess      bool
	reportDuration     time.Duration
	reportSatisfaction float64
)

var reportCmd = &cobra.Command{
	Use:   "report <request>",
	Short: "Report the outcome of a previously routed request",
	Long: `Record how a routed request actually went. The outcome is persisted
to the memory store and fed to the learning engine, where it shapes
future routing suggestions.

The request text must match the one given to 'steward route' so the
outcome lands on the same decision.

Examples:
  steward report --success --duration 25m "fix the bug in login"
  steward report --duration 2h --satisfaction 0.3 "refactor the session handling"`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportSuccess, "success", false, "The task completed successfully")
	reportCmd.Flags().DurationVar(&reportDuration, "duration", 0, "How long execution took")
	reportCmd.Flags().Float64Var(&reportSatisfaction, "satisfaction", -1, "Requester satisfaction in [0,1]")
}

func runReport(cmd *cobra.Command, args []string) error {
	var satisfaction *float64
	if cmd.Flags().Changed("satisfaction") {
		if reportSatisfaction < 0 || reportSatisfaction > 1 {
			return fmt.Errorf("satisfaction %v outside [0,1]", reportSatisfaction)
		}
		satisfaction = &reportSatisfaction
	}

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	// Re-derive the decision for the request so the outcome record carries
	// the same classification and agent the route command produced.
	reqCtx := models.RequestContext{
		SessionID: uuid.New().String(),
		Timestamp: time.Now(),
		Urgency:   models.UrgencyNormal,
	}
	decision, err := s.router.Route(args[0], reqCtx)
	if err != nil {
		return err
	}

	outcome := router.Outcome{
		Success:      reportSuccess,
		Duration:     reportDuration,
		Satisfaction: satisfaction,
	}
	if err := s.router.ReportOutcome(args[0], decision, outcome); err != nil {
		return fmt.Errorf("report outcome: %w", err)
	}

	symbol, attr := "✓", color.FgGreen
	if !reportSuccess {
		symbol, attr = "✗", color.FgRed
	}
	printStatus(symbol, fmt.Sprintf("Recorded outcome for %s (%s / %s)",
		decision.PrimaryAgent, decision.Analysis.TaskType, decision.Analysis.Complexity), attr)
	fmt.Printf("  Duration: %s\n", reportDuration)
	if satisfaction != nil {
		fmt.Printf("  Satisfaction: %.2f\n", *satisfaction)
	}
	return nil
}
