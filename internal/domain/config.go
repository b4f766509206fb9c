package domain

import (
	"errors"
	"fmt"
	"time"
)

// Backoff strategies for retrying transient mutation failures.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// EngineConfig holds bulk mutation engine settings from the [engine] section.
// Fields are ordered to minimize memory padding.
type EngineConfig struct {
	RetryBackoff     time.Duration // Base delay between retries
	Timeout          time.Duration // Overall wall-clock budget (0 = none)
	RetryStrategy    string        // "fixed" or "exponential"
	BatchSize        int           // Tasks per batch (> 0)
	MaxWorkers       int           // Concurrent batch workers (> 0)
	RetryMaxAttempts int           // Extra attempts after the first (>= 0)
	Cascade          bool          // Include transitive dependents in the plan
	RollbackOnError  bool          // Revert committed mutations on failure
}

// LevelingConfig holds resource leveling settings from the [leveling] section.
type LevelingConfig struct {
	WindowMins    int64 // Width of a capacity window in minutes
	MaxIterations int   // Shift budget before reporting unresolved
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string // Log level: debug, info, warn, error
}

// Config represents the application configuration.
type Config struct {
	Engine   EngineConfig
	Leveling LevelingConfig
	Log      LogConfig
}

// NewDefaultConfig returns the configuration defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			BatchSize:        50,
			MaxWorkers:       4,
			RetryMaxAttempts: 3,
			RetryBackoff:     100 * time.Millisecond,
			RetryStrategy:    BackoffExponential,
		},
		Leveling: LevelingConfig{
			MaxIterations: 1000,
			WindowMins:    1440, // one day
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	return c.Leveling.Validate()
}

// Validate checks the engine configuration invariants.
func (c *EngineConfig) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("engine.batch_size must be positive")
	}
	if c.MaxWorkers <= 0 {
		return errors.New("engine.max_workers must be positive")
	}
	if c.RetryMaxAttempts < 0 {
		return errors.New("engine.retry_max_attempts cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return errors.New("engine.retry_backoff cannot be negative")
	}
	if c.RetryStrategy != BackoffFixed && c.RetryStrategy != BackoffExponential {
		return fmt.Errorf("engine.retry_strategy must be %q or %q", BackoffFixed, BackoffExponential)
	}
	return nil
}

// Validate checks the leveling configuration invariants.
func (c *LevelingConfig) Validate() error {
	if c.MaxIterations <= 0 {
		return errors.New("leveling.max_iterations must be positive")
	}
	if c.WindowMins <= 0 {
		return errors.New("leveling.window_mins must be positive")
	}
	return nil
}
