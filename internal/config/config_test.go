package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tick.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Interval)
	assert.Equal(t, "Halo1", cfg.Message)
	assert.Equal(t, []Pair{{First: 1, Second: 2}}, cfg.Pairs)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
interval = "2s"
message = "hello"

[[pairs]]
first = 3
second = 4

[[pairs]]
first = 5
second = 6
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "hello", cfg.Message)
	assert.Equal(t, []Pair{{3, 4}, {5, 6}}, cfg.Pairs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `interval = "2s"`)
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("TICK_METRICS_ADDR", ":2112")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, ":2112", cfg.MetricsAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadInvalidInterval(t *testing.T) {
	path := writeConfig(t, `interval = "-1s"`)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
}
