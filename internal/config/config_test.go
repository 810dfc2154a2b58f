package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedsConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DAILYRESET_SERVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.True(t, cfg.ConfirmDelete)

	dir, err := Dir()
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err, "first Load should write the default config file")
}

func TestLoadReadsSavedConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.ServerURL = "https://tasks.example.com"
	cfg.ConfirmDelete = false
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com", loaded.ServerURL)
	assert.False(t, loaded.ConfirmDelete)
}
