// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/planweave/planweave/internal/domain"
)

// ConfigFileName is the configuration file name inside a config directory.
const ConfigFileName = "config.toml"

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	workspaceDir  string // Path to the .planweave directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/planweave)
}

// NewLoader creates a new Loader.
func NewLoader(workspaceDir string) *Loader {
	return &Loader{
		workspaceDir:  workspaceDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(workspaceDir, globalConfDir string) *Loader {
	return &Loader{
		workspaceDir:  workspaceDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "planweave")
}

// fileConfig mirrors the TOML layout with optional fields so merging
// can tell "absent" from "zero".
type fileConfig struct {
	Engine struct {
		BatchSize        *int    `toml:"batch_size"`
		MaxWorkers       *int    `toml:"max_workers"`
		RetryMaxAttempts *int    `toml:"retry_max_attempts"`
		RetryBackoffMs   *int64  `toml:"retry_backoff_ms"`
		RetryStrategy    *string `toml:"retry_strategy"`
		TimeoutMs        *int64  `toml:"timeout_ms"`
		Cascade          *bool   `toml:"cascade"`
		RollbackOnError  *bool   `toml:"rollback_on_error"`
	} `toml:"engine"`
	Leveling struct {
		WindowMins    *int64 `toml:"window_mins"`
		MaxIterations *int   `toml:"max_iterations"`
	} `toml:"leveling"`
	Log struct {
		Level *string `toml:"level"`
	} `toml:"log"`
}

// Load returns the merged configuration (workspace + global).
// Workspace config takes precedence over global config.
func (l *Loader) Load() (*domain.Config, error) {
	base := domain.NewDefaultConfig()

	if l.globalConfDir != "" {
		global, err := loadFile(filepath.Join(l.globalConfDir, ConfigFileName))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if global != nil {
			applyFileConfig(base, global)
		}
	}

	workspace, err := loadFile(filepath.Join(l.workspaceDir, ConfigFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if workspace != nil {
		applyFileConfig(base, workspace)
	}

	if err := base.Validate(); err != nil {
		return nil, err
	}
	return base, nil
}

// loadFile loads a configuration from a file.
func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

// applyFileConfig overlays the set fields of fc onto cfg.
func applyFileConfig(cfg *domain.Config, fc *fileConfig) {
	if fc.Engine.BatchSize != nil {
		cfg.Engine.BatchSize = *fc.Engine.BatchSize
	}
	if fc.Engine.MaxWorkers != nil {
		cfg.Engine.MaxWorkers = *fc.Engine.MaxWorkers
	}
	if fc.Engine.RetryMaxAttempts != nil {
		cfg.Engine.RetryMaxAttempts = *fc.Engine.RetryMaxAttempts
	}
	if fc.Engine.RetryBackoffMs != nil {
		cfg.Engine.RetryBackoff = time.Duration(*fc.Engine.RetryBackoffMs) * time.Millisecond
	}
	if fc.Engine.RetryStrategy != nil {
		cfg.Engine.RetryStrategy = *fc.Engine.RetryStrategy
	}
	if fc.Engine.TimeoutMs != nil {
		cfg.Engine.Timeout = time.Duration(*fc.Engine.TimeoutMs) * time.Millisecond
	}
	if fc.Engine.Cascade != nil {
		cfg.Engine.Cascade = *fc.Engine.Cascade
	}
	if fc.Engine.RollbackOnError != nil {
		cfg.Engine.RollbackOnError = *fc.Engine.RollbackOnError
	}
	if fc.Leveling.WindowMins != nil {
		cfg.Leveling.WindowMins = *fc.Leveling.WindowMins
	}
	if fc.Leveling.MaxIterations != nil {
		cfg.Leveling.MaxIterations = *fc.Leveling.MaxIterations
	}
	if fc.Log.Level != nil {
		cfg.Log.Level = *fc.Log.Level
	}
}
