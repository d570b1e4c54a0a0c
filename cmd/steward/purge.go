package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var purgeOlderThan int

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove old routing records",
	Long: `Delete routing records older than the given number of days.

The retention cap already bounds the store's size; purge additionally
drops stale history regardless of count. The default age comes from
memory.max_age_days in the config.

Examples:
  steward purge
  steward purge --older-than 30`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().IntVar(&purgeOlderThan, "older-than", 0, "Age threshold in days (0 = config default)")
}

func runPurge(cmd *cobra.Command, args []string) error {
	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	days := purgeOlderThan
	if days == 0 {
		days = s.cfg.Memory.MaxAgeDays
	}

	removed, err := s.store.PurgeOlderThan(days)
	if err != nil {
		return fmt.Errorf("purge records: %w", err)
	}

	if removed == 0 {
		fmt.Printf("No records older than %d days.\n", days)
		return nil
	}
	printStatus("✓", fmt.Sprintf("Removed %d record(s) older than %d days", removed, days), color.FgGreen)
	return nil
}
