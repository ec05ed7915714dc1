package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1_000_000, cfg.MaxSteps)
	assert.Equal(t, 3, cfg.OptimizationLevel)
	assert.True(t, cfg.EnableJIT)
	assert.Equal(t, 64, cfg.HotPathThreshold)
	assert.Empty(t, cfg.DiagnosticsDir)
}

func TestSaveAndLoad_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.MaxSteps = 500
	cfg.HotPathThreshold = 8
	cfg.DiagnosticsDir = "/tmp/ir"

	path := filepath.Join(t.TempDir(), "vrlcore.yaml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_steps: 10\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxSteps)
	assert.True(t, cfg.EnableJIT, "omitted field should keep Default's value rather than zero out")
	assert.Equal(t, 64, cfg.HotPathThreshold)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_steps: [this is not an int\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
