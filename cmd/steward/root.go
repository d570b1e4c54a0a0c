package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "steward",
	Short: "Request routing and task decomposition engine",
	Long: `Steward classifies incoming requests, routes them to the most suitable
agent, and decomposes them into dependency-ordered subtask plans.

Every routing decision and its outcome is persisted, and the learning
engine folds that history into patterns that can override the static
capability table once enough evidence accumulates.

Core capabilities:
- Classifies requests by task type and complexity
- Selects agents from a configurable capability table
- Decomposes requests into subtask graphs with critical paths
- Records outcomes and learns better routings over time`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
