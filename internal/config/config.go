// Package config handles configuration loading and management for Steward.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for Steward.
type Config struct {
	Memory   MemoryConfig   `mapstructure:"memory"`
	Router   RouterConfig   `mapstructure:"router"`
	Learning LearningConfig `mapstructure:"learning"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// MemoryConfig holds memory store settings.
type MemoryConfig struct {
	// DBPath overrides the database location. Empty uses the XDG default.
	DBPath string `mapstructure:"db_path"`
	// RetentionCap is the maximum number of routing records kept.
	RetentionCap int `mapstructure:"retention_cap"`
	// MaxAgeDays is the age threshold used by the purge command.
	MaxAgeDays int `mapstructure:"max_age_days"`
}

// RouterConfig holds routing settings.
type RouterConfig struct {
	// ConfidenceThreshold is the minimum learned-pattern confidence that
	// overrides the capability table.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	// CapabilitiesFile points at a YAML capability table. Empty uses the
	// built-in table.
	CapabilitiesFile string `mapstructure:"capabilities_file"`
	// TemplatesFile points at a YAML phase-template override file.
	TemplatesFile string `mapstructure:"templates_file"`
}

// LearningConfig holds learning engine settings.
type LearningConfig struct {
	// MaxEvents bounds the in-memory event buffer.
	MaxEvents int `mapstructure:"max_events"`
}

// LoggingConfig holds debug logging settings.
type LoggingConfig struct {
	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`
	// DebugLogPath is where debug output is written when Debug is set.
	DebugLogPath string `mapstructure:"debug_log_path"`
}

// Validate checks that loaded values are usable.
func (c *Config) Validate() error {
	if c.Memory.RetentionCap <= 0 {
		return fmt.Errorf("memory.retention_cap must be positive, got %d", c.Memory.RetentionCap)
	}
	if c.Memory.MaxAgeDays <= 0 {
		return fmt.Errorf("memory.max_age_days must be positive, got %d", c.Memory.MaxAgeDays)
	}
	if c.Router.ConfidenceThreshold < 0 || c.Router.ConfidenceThreshold > 1 {
		return fmt.Errorf("router.confidence_threshold must be in [0,1], got %v", c.Router.ConfidenceThreshold)
	}
	if c.Learning.MaxEvents <= 0 {
		return fmt.Errorf("learning.max_events must be positive, got %d", c.Learning.MaxEvents)
	}
	return nil
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (STEWARD_*)
// 2. Project config (.steward.yaml in current directory or parent)
// 3. User config (~/.config/steward/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("STEWARD")
	v.AutomaticEnv()
	v.BindEnv("memory.db_path", "STEWARD_DB_PATH")
	v.BindEnv("logging.debug", "STEWARD_DEBUG")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in paths
	cfg.Memory.DBPath = expandEnv(cfg.Memory.DBPath)
	cfg.Router.CapabilitiesFile = expandEnv(cfg.Router.CapabilitiesFile)
	cfg.Router.TemplatesFile = expandEnv(cfg.Router.TemplatesFile)
	cfg.Logging.DebugLogPath = expandEnv(cfg.Logging.DebugLogPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Memory.DBPath = expandEnv(cfg.Memory.DBPath)
	cfg.Router.CapabilitiesFile = expandEnv(cfg.Router.CapabilitiesFile)
	cfg.Router.TemplatesFile = expandEnv(cfg.Router.TemplatesFile)
	cfg.Logging.DebugLogPath = expandEnv(cfg.Logging.DebugLogPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("memory.db_path", cfg.Memory.DBPath)
	v.Set("memory.retention_cap", cfg.Memory.RetentionCap)
	v.Set("memory.max_age_days", cfg.Memory.MaxAgeDays)
	v.Set("router.confidence_threshold", cfg.Router.ConfidenceThreshold)
	v.Set("router.capabilities_file", cfg.Router.CapabilitiesFile)
	v.Set("router.templates_file", cfg.Router.TemplatesFile)
	v.Set("learning.max_events", cfg.Learning.MaxEvents)
	v.Set("logging.debug", cfg.Logging.Debug)
	v.Set("logging.debug_log_path", cfg.Logging.DebugLogPath)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("memory.db_path", "")
	v.SetDefault("memory.retention_cap", 10000)
	v.SetDefault("memory.max_age_days", 90)

	v.SetDefault("router.confidence_threshold", 0.7)
	v.SetDefault("router.capabilities_file", "")
	v.SetDefault("router.templates_file", "")

	v.SetDefault("learning.max_events", 1000)

	v.SetDefault("logging.debug", false)
	v.SetDefault("logging.debug_log_path", "")
}

// getUserConfigDir returns the XDG config directory for Steward.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "steward")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "steward")
	}
	return filepath.Join(home, ".config", "steward")
}

// findProjectConfig searches for .steward.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".steward.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			RetentionCap: 10000,
			MaxAgeDays:   90,
		},
		Router: RouterConfig{
			ConfidenceThreshold: 0.7,
		},
		Learning: LearningConfig{
			MaxEvents: 1000,
		},
		Logging: LoggingConfig{},
	}
}
