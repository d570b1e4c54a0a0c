package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Memory.RetentionCap != 10000 {
		t.Errorf("expected default retention_cap 10000, got %d", cfg.Memory.RetentionCap)
	}

	if cfg.Memory.MaxAgeDays != 90 {
		t.Errorf("expected default max_age_days 90, got %d", cfg.Memory.MaxAgeDays)
	}

	if cfg.Router.ConfidenceThreshold != 0.7 {
		t.Errorf("expected default confidence_threshold 0.7, got %v", cfg.Router.ConfidenceThreshold)
	}

	if cfg.Learning.MaxEvents != 1000 {
		t.Errorf("expected default max_events 1000, got %d", cfg.Learning.MaxEvents)
	}

	if cfg.Logging.Debug {
		t.Error("expected logging.debug to default to false")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
memory:
  db_path: /tmp/steward-test.db
  retention_cap: 500
  max_age_days: 30
router:
  confidence_threshold: 0.8
  capabilities_file: agents.yaml
learning:
  max_events: 250
logging:
  debug: true
  debug_log_path: /tmp/steward-debug.log
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Memory.DBPath != "/tmp/steward-test.db" {
		t.Errorf("expected db_path '/tmp/steward-test.db', got %q", cfg.Memory.DBPath)
	}

	if cfg.Memory.RetentionCap != 500 {
		t.Errorf("expected retention_cap 500, got %d", cfg.Memory.RetentionCap)
	}

	if cfg.Memory.MaxAgeDays != 30 {
		t.Errorf("expected max_age_days 30, got %d", cfg.Memory.MaxAgeDays)
	}

	if cfg.Router.ConfidenceThreshold != 0.8 {
		t.Errorf("expected confidence_threshold 0.8, got %v", cfg.Router.ConfidenceThreshold)
	}

	if cfg.Router.CapabilitiesFile != "agents.yaml" {
		t.Errorf("expected capabilities_file 'agents.yaml', got %q", cfg.Router.CapabilitiesFile)
	}

	if cfg.Learning.MaxEvents != 250 {
		t.Errorf("expected max_events 250, got %d", cfg.Learning.MaxEvents)
	}

	if !cfg.Logging.Debug {
		t.Error("expected logging.debug to be true")
	}
}

func TestLoadFromPathPartialOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Only one section present; the rest must keep defaults.
	configContent := `
memory:
  retention_cap: 42
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Memory.RetentionCap != 42 {
		t.Errorf("expected retention_cap 42, got %d", cfg.Memory.RetentionCap)
	}
	if cfg.Router.ConfidenceThreshold != 0.7 {
		t.Errorf("expected default confidence_threshold 0.7, got %v", cfg.Router.ConfidenceThreshold)
	}
	if cfg.Learning.MaxEvents != 1000 {
		t.Errorf("expected default max_events 1000, got %d", cfg.Learning.MaxEvents)
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
router:
  confidence_threshold: 1.5
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadFromPath(configPath); err == nil {
		t.Error("expected error for confidence_threshold outside [0,1], got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero retention cap", func(c *Config) { c.Memory.RetentionCap = 0 }, true},
		{"negative max age", func(c *Config) { c.Memory.MaxAgeDays = -1 }, true},
		{"threshold above one", func(c *Config) { c.Router.ConfidenceThreshold = 1.1 }, true},
		{"negative threshold", func(c *Config) { c.Router.ConfidenceThreshold = -0.1 }, true},
		{"zero max events", func(c *Config) { c.Learning.MaxEvents = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "expanded-value")
	defer os.Unsetenv("TEST_VAR")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/steward"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}
