package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/decompose"
	"github.com/stewardhq/steward/internal/learning"
	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/internal/memory"
	"github.com/stewardhq/steward/internal/router"
	"github.com/stewardhq/steward/pkg/models"
)

// stack bundles the components a command needs, plus their teardown.
type stack struct {
	cfg        *config.Config
	logger     *logging.DebugLogger
	store      *memory.Store
	engine     *learning.Engine
	router     *router.Router
	decomposer *decompose.Decomposer
	watcher    *config.Watcher
}

// Close releases the stack's resources.
func (s *stack) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
	if s.logger != nil {
		s.logger.Close()
	}
}

// openStack loads config, opens the memory store, warms the learning engine
// from persisted history, and wires the router on top.
func openStack() (*stack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Debug {
		logger, err = logging.NewDebugLogger(cfg.Logging.DebugLogPath)
		if err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
	}

	store, err := memory.NewStore(resolveDBPath(cfg), cfg.Memory.RetentionCap)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		logger.Close()
		return nil, fmt.Errorf("migrate memory store: %w", err)
	}

	engine := learning.NewEngine(
		learning.WithMaxEvents(cfg.Learning.MaxEvents),
		learning.WithDebugLog(logger.Logf()),
	)
	history, err := store.Recent(cfg.Learning.MaxEvents)
	if err != nil {
		logger.Log("[cli] warm start skipped: %v", err)
	} else if n := engine.ReplayMemories(history); n > 0 {
		logger.Log("[cli] replayed %d routing records", n)
	}

	capabilities, err := loadCapabilities(cfg)
	if err != nil {
		store.Close()
		logger.Close()
		return nil, err
	}

	templates, err := loadTemplates(cfg)
	if err != nil {
		store.Close()
		logger.Close()
		return nil, err
	}

	decomposerOpts := []decompose.Option{decompose.WithDebugLog(logger.Logf())}
	if templates != nil {
		decomposerOpts = append(decomposerOpts, decompose.WithTemplates(templates))
	}

	rt := router.New(capabilities, engine, store,
		router.WithConfidenceThreshold(cfg.Router.ConfidenceThreshold),
		router.WithDebugLog(logger.Logf()),
	)

	return &stack{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		engine:     engine,
		router:     rt,
		decomposer: decompose.New(decomposerOpts...),
		watcher:    watchCapabilities(cfg, rt, logger),
	}, nil
}

// watchCapabilities keeps the router's capability table in sync with the
// configured capabilities file. A watch failure is logged, not fatal: the
// table loaded at startup stays in effect.
func watchCapabilities(cfg *config.Config, rt *router.Router, logger *logging.DebugLogger) *config.Watcher {
	if cfg.Router.CapabilitiesFile == "" {
		return nil
	}
	watcher, err := config.WatchFile(cfg.Router.CapabilitiesFile, func() {
		capabilities, err := config.LoadCapabilities(cfg.Router.CapabilitiesFile)
		if err != nil {
			logger.Log("[cli] capability reload rejected: %v", err)
			return
		}
		rt.SetCapabilities(capabilities)
		logger.Log("[cli] reloaded %d agent capabilities", len(capabilities))
	}, logger.Logf())
	if err != nil {
		logger.Log("[cli] capability watch unavailable: %v", err)
		return nil
	}
	return watcher
}

// resolveDBPath prefers the configured path, then a project database if one
// exists, then the global default.
func resolveDBPath(cfg *config.Config) string {
	if cfg.Memory.DBPath != "" {
		return cfg.Memory.DBPath
	}
	if cwd, err := os.Getwd(); err == nil {
		projectPath := memory.ProjectDBPath(cwd)
		if _, err := os.Stat(projectPath); err == nil {
			return projectPath
		}
	}
	return memory.GlobalDBPath()
}

// loadCapabilities returns the configured capability table, or nil so the
// router falls back to its built-in table.
func loadCapabilities(cfg *config.Config) ([]models.AgentCapability, error) {
	if cfg.Router.CapabilitiesFile == "" {
		return nil, nil
	}
	capabilities, err := config.LoadCapabilities(cfg.Router.CapabilitiesFile)
	if err != nil {
		return nil, fmt.Errorf("load capabilities: %w", err)
	}
	return capabilities, nil
}

// loadTemplates returns phase-template overrides, or nil for the defaults.
func loadTemplates(cfg *config.Config) (map[models.TaskType]decompose.PhaseTemplate, error) {
	if cfg.Router.TemplatesFile == "" {
		return nil, nil
	}
	templates, err := config.LoadTemplates(cfg.Router.TemplatesFile)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return templates, nil
}

// parseUrgency validates an urgency flag value.
func parseUrgency(raw string) (models.Urgency, error) {
	urgency := models.Urgency(raw)
	if !urgency.Valid() {
		return "", fmt.Errorf("unknown urgency %q (want low, normal, high, or critical)", raw)
	}
	return urgency, nil
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

// truncate shortens a string to max length, adding ellipsis if needed
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
