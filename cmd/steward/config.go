package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Steward configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/steward/config.yaml
Project-specific overrides can be placed in .steward.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	dbPathDisplay := cfg.Memory.DBPath
	if dbPathDisplay == "" {
		dbPathDisplay = "(default)"
	}

	fmt.Printf("memory.db_path: %s\n", dbPathDisplay)
	fmt.Printf("memory.retention_cap: %d\n", cfg.Memory.RetentionCap)
	fmt.Printf("memory.max_age_days: %d\n", cfg.Memory.MaxAgeDays)
	fmt.Printf("router.confidence_threshold: %g\n", cfg.Router.ConfidenceThreshold)
	fmt.Printf("router.capabilities_file: %s\n", cfg.Router.CapabilitiesFile)
	fmt.Printf("router.templates_file: %s\n", cfg.Router.TemplatesFile)
	fmt.Printf("learning.max_events: %d\n", cfg.Learning.MaxEvents)
	fmt.Printf("logging.debug: %t\n", cfg.Logging.Debug)
	fmt.Printf("logging.debug_log_path: %s\n", cfg.Logging.DebugLogPath)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "memory.db_path":
		if cfg.Memory.DBPath == "" {
			return "(default)", nil
		}
		return cfg.Memory.DBPath, nil
	case "memory.retention_cap":
		return strconv.Itoa(cfg.Memory.RetentionCap), nil
	case "memory.max_age_days":
		return strconv.Itoa(cfg.Memory.MaxAgeDays), nil
	case "router.confidence_threshold":
		return strconv.FormatFloat(cfg.Router.ConfidenceThreshold, 'g', -1, 64), nil
	case "router.capabilities_file":
		return cfg.Router.CapabilitiesFile, nil
	case "router.templates_file":
		return cfg.Router.TemplatesFile, nil
	case "learning.max_events":
		return strconv.Itoa(cfg.Learning.MaxEvents), nil
	case "logging.debug":
		return strconv.FormatBool(cfg.Logging.Debug), nil
	case "logging.debug_log_path":
		return cfg.Logging.DebugLogPath, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "memory.db_path":
		cfg.Memory.DBPath = value
	case "memory.retention_cap":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for retention_cap: %w", err)
		}
		cfg.Memory.RetentionCap = n
	case "memory.max_age_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_age_days: %w", err)
		}
		cfg.Memory.MaxAgeDays = n
	case "router.confidence_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for confidence_threshold: %w", err)
		}
		cfg.Router.ConfidenceThreshold = f
	case "router.capabilities_file":
		cfg.Router.CapabilitiesFile = value
	case "router.templates_file":
		cfg.Router.TemplatesFile = value
	case "learning.max_events":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_events: %w", err)
		}
		cfg.Learning.MaxEvents = n
	case "logging.debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for logging.debug: %w", err)
		}
		cfg.Logging.Debug = b
	case "logging.debug_log_path":
		cfg.Logging.DebugLogPath = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
