package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleConfig = `
token: "eyJhbGciOiJIUzI1NiJ9.test"
interval: "2m"
paused: false
selected_batch_ids:
  - "64a9f0e1d2c3b4a5f6e7d8c9"
scope_mode: "per-batch"
ledger:
  driver: "file"
  dir: "/tmp/pw-state"
discord:
  enabled: true
  webhook_url: "https://discord.com/api/webhooks/test"
  timeout: "15s"
`

func TestNewStore(t *testing.T) {
	t.Run("should load and validate config file", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, t.TempDir(), sampleConfig)

		// Act
		store, err := NewStore(path)

		// Assert
		require.NoError(t, err)

		cfg := store.Current()
		assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9.test", cfg.Token)
		assert.Equal(t, 2*time.Minute, cfg.Interval.Std())
		assert.Equal(t, 15*time.Second, cfg.Discord.Timeout.Std())
		assert.Equal(t, []string{"64a9f0e1d2c3b4a5f6e7d8c9"}, cfg.SelectedBatchIDs)
	})

	t.Run("should apply defaults for omitted fields", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, t.TempDir(), `token: "t"`)

		// Act
		store, err := NewStore(path)

		// Assert
		require.NoError(t, err)

		cfg := store.Current()
		assert.Equal(t, defaultInterval, cfg.Interval.Std())
		assert.Equal(t, ScopeModePerBatch, cfg.ScopeMode)
		assert.Equal(t, LedgerDriverFile, cfg.Ledger.Driver)
		assert.Equal(t, defaultLedgerDir, cfg.Ledger.Dir)
	})

	t.Run("should fail on missing file", func(t *testing.T) {
		// Act
		_, err := NewStore(filepath.Join(t.TempDir(), "missing.yaml"))

		// Assert
		require.Error(t, err)
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, t.TempDir(), "token: [unclosed")

		// Act
		_, err := NewStore(path)

		// Assert
		require.Error(t, err)
	})

	t.Run("should fail on invalid scope mode", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, t.TempDir(), "token: t\nscope_mode: per-course\n")

		// Act
		_, err := NewStore(path)

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scope_mode")
	})

	t.Run("should require dsn for postgres ledger", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, t.TempDir(), "token: t\nledger:\n  driver: postgres\n")

		// Act
		_, err := NewStore(path)

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger.dsn")
	})
}

func TestStore_Reload(t *testing.T) {
	t.Run("should pick up pause flag edits", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		path := writeConfig(t, dir, sampleConfig)
		store, err := NewStore(path)
		require.NoError(t, err)

		// Act - edit the file, then reload
		writeConfig(t, dir, strings.Replace(sampleConfig, "paused: false", "paused: true", 1))
		cfg := store.Reload()

		// Assert
		assert.True(t, cfg.Paused)
	})

	t.Run("should keep last good snapshot when file becomes invalid", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		path := writeConfig(t, dir, sampleConfig)
		store, err := NewStore(path)
		require.NoError(t, err)

		// Act - corrupt the file, then reload
		writeConfig(t, dir, "token: [broken")
		cfg := store.Reload()

		// Assert - still the original snapshot
		assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9.test", cfg.Token)
		assert.Equal(t, 2*time.Minute, cfg.Interval.Std())
	})
}

func TestStore_Save(t *testing.T) {
	t.Run("should write file atomically and round-trip", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		path := writeConfig(t, dir, sampleConfig)
		store, err := NewStore(path)
		require.NoError(t, err)

		cfg := store.Current()
		cfg.Paused = true

		// Act
		require.NoError(t, store.Save(cfg))

		// Assert - reload from disk sees the change
		reloaded, err := NewStore(path)
		require.NoError(t, err)
		assert.True(t, reloaded.Current().Paused)

		// No temp files left behind
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestStore_ClearSelection(t *testing.T) {
	t.Run("should empty selected_batch_ids on disk", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		path := writeConfig(t, dir, sampleConfig)
		store, err := NewStore(path)
		require.NoError(t, err)

		// Act
		require.NoError(t, store.ClearSelection())

		// Assert
		reloaded, err := NewStore(path)
		require.NoError(t, err)
		assert.Empty(t, reloaded.Current().SelectedBatchIDs)

		// Other fields survive the rewrite
		assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9.test", reloaded.Current().Token)
	})
}

func TestDuration_YAML(t *testing.T) {
	t.Run("should reject negative durations", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, t.TempDir(), "token: t\ninterval: \"-5s\"\n")

		// Act
		_, err := NewStore(path)

		// Assert
		require.Error(t, err)
	})

	t.Run("should reject garbage durations", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, t.TempDir(), "token: t\ninterval: \"ninety seconds\"\n")

		// Act
		_, err := NewStore(path)

		// Assert
		require.Error(t, err)
	})
}
