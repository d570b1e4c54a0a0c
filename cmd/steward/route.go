package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/pkg/models"
)

var (
	routeUrgency string
	routeUser    string
	routeSession string
	routeLoad    float64
	routeJSON    bool
)

var routeCmd = &cobra.Command{
	Use:   "route <request>",
	Short: "Route a request to the best-suited agent",
	Long: `Classify a request and select the agent best suited to handle it.

The decision considers the static capability table, current system load,
and any learned routing patterns strong enough to override the table.
The decision is recorded so later outcome reports can be matched to it.

Examples:
  steward route "fix the bug in login"
  steward route --urgency critical "the payment service is down"
  steward route --json "refactor the session handling"`,
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVarP(&routeUrgency, "urgency", "u", "normal", "Request urgency (low, normal, high, critical)")
	routeCmd.Flags().StringVar(&routeUser, "user", "", "Requesting user id")
	routeCmd.Flags().StringVar(&routeSession, "session", "", "Session id (generated when empty)")
	routeCmd.Flags().Float64Var(&routeLoad, "load", 0, "Current system load in [0,1]")
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "Print the decision as JSON")
}

func runRoute(cmd *cobra.Command, args []string) error {
	urgency, err := parseUrgency(routeUrgency)
	if err != nil {
		return err
	}

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	reqCtx := models.RequestContext{
		UserID:     routeUser,
		SessionID:  routeSession,
		Timestamp:  time.Now(),
		Urgency:    urgency,
		SystemLoad: routeLoad,
	}
	if reqCtx.SessionID == "" {
		reqCtx.SessionID = uuid.New().String()
	}

	decision, err := s.router.Route(args[0], reqCtx)
	if err != nil {
		return err
	}

	if routeJSON {
		return printJSON(decision)
	}

	printDecision(args[0], decision)
	return nil
}

// printDecision renders a routing decision for the terminal.
func printDecision(request string, decision *models.RoutingDecision) {
	printStatus("✓", fmt.Sprintf("Routed: %s / %s", decision.Analysis.TaskType, decision.Analysis.Complexity), color.FgGreen)
	fmt.Printf("  Request:    %s\n", truncate(request, 70))
	fmt.Printf("  Agent:      %s\n", decision.PrimaryAgent)
	if len(decision.SecondaryAgents) > 0 {
		fmt.Printf("  Support:    %s\n", joinAgents(decision.SecondaryAgents))
	}
	fmt.Printf("  Strategy:   %s\n", decision.Strategy)
	fmt.Printf("  Confidence: %.2f\n", decision.Confidence)
	fmt.Printf("  Estimate:   %s\n", decision.EstimatedCompletion)
	fmt.Printf("  Reasoning:  %s\n", decision.Reasoning)
}

// joinAgents formats an agent list for display.
func joinAgents(agents []models.AgentType) string {
	parts := make([]string, len(agents))
	for i, agent := range agents {
		parts[i] = string(agent)
	}
	return strings.Join(parts, ", ")
}

// printJSON renders any value as indented JSON on stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
