package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	loader := NewLoaderWithGlobalDir(t.TempDir(), t.TempDir())

	cfg, err := loader.Load()
	require.NoError(t, err)

	defaults := domain.NewDefaultConfig()
	assert.Equal(t, defaults.Engine.BatchSize, cfg.Engine.BatchSize)
	assert.Equal(t, defaults.Leveling.WindowMins, cfg.Leveling.WindowMins)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadWorkspaceOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	workspaceDir := t.TempDir()

	writeConfig(t, globalDir, `
[engine]
batch_size = 25
max_workers = 2

[log]
level = "debug"
`)
	writeConfig(t, workspaceDir, `
[engine]
batch_size = 100
`)

	loader := NewLoaderWithGlobalDir(workspaceDir, globalDir)
	cfg, err := loader.Load()
	require.NoError(t, err)

	// Workspace wins where it speaks, global fills the rest.
	assert.Equal(t, 100, cfg.Engine.BatchSize)
	assert.Equal(t, 2, cfg.Engine.MaxWorkers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEngineSettings(t *testing.T) {
	workspaceDir := t.TempDir()
	writeConfig(t, workspaceDir, `
[engine]
retry_max_attempts = 5
retry_backoff_ms = 250
retry_strategy = "fixed"
timeout_ms = 60000
rollback_on_error = true

[leveling]
window_mins = 480
max_iterations = 50
`)

	loader := NewLoaderWithGlobalDir(workspaceDir, t.TempDir())
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Engine.RetryMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.RetryBackoff)
	assert.Equal(t, domain.BackoffFixed, cfg.Engine.RetryStrategy)
	assert.Equal(t, time.Minute, cfg.Engine.Timeout)
	assert.True(t, cfg.Engine.RollbackOnError)
	assert.Equal(t, int64(480), cfg.Leveling.WindowMins)
	assert.Equal(t, 50, cfg.Leveling.MaxIterations)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	workspaceDir := t.TempDir()
	writeConfig(t, workspaceDir, `
[engine]
batch_size = 0
`)

	loader := NewLoaderWithGlobalDir(workspaceDir, t.TempDir())
	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	workspaceDir := t.TempDir()
	writeConfig(t, workspaceDir, "[engine\nbatch_size = 1")

	loader := NewLoaderWithGlobalDir(workspaceDir, t.TempDir())
	_, err := loader.Load()
	assert.Error(t, err)
}
