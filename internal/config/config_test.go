package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QTRAJ_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 500, cfg.Trajectories)
	assert.Equal(t, 0, cfg.Workers)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QTRAJ_DATA_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("QTRAJ_TRAJECTORIES", "42")
	t.Setenv("QTRAJ_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 42, cfg.Trajectories)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadRejectsInvalidTrajectories(t *testing.T) {
	t.Setenv("QTRAJ_DATA_DIR", t.TempDir())
	t.Setenv("QTRAJ_TRAJECTORIES", "-5")

	_, err := Load()
	assert.Error(t, err)
}
