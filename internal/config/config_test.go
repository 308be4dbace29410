package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Manufacturing", c.Industry)
	assert.Equal(t, "CFO", c.StakeholderMode)
	assert.Equal(t, "Balanced", c.ConfidenceMode)
	assert.Equal(t, "", c.AugmentProvider)
	assert.Equal(t, 3, c.RetryMaxAttempts)
	assert.Equal(t, 4, c.BatchParallel)
	assert.Equal(t, "session_memory.json", filepath.Base(c.MemoryFile))
}

func TestSaveLoadAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	c := &Global{Industry: "Healthcare", AugmentProvider: "ollama", HTTPTimeoutSec: 5, MemoryFile: "/tmp/m.json"}
	require.NoError(t, Save(c, path))

	t.Setenv("AGENTOPS_CONFIDENCE_MODE", "Aggressive")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Healthcare", got.Industry)
	assert.Equal(t, "ollama", got.AugmentProvider)
	assert.Equal(t, 5, got.HTTPTimeoutSec)
	assert.Equal(t, "Aggressive", got.ConfidenceMode)
	assert.Equal(t, "/tmp/m.json", got.MemoryFile)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("industry: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	var c Global
	require.NoError(t, c.Set("augment_provider", "gemini"))
	require.NoError(t, c.Set("BATCH_PARALLEL", "8"))
	require.NoError(t, c.Set("explain_mode", "true"))
	assert.Equal(t, "gemini", c.AugmentProvider)
	assert.Equal(t, 8, c.BatchParallel)
	assert.True(t, c.ExplainMode)

	assert.Error(t, c.Set("retry_max_attempts", "many"))
	assert.Error(t, c.Set("nope", "x"))
}

func TestRedacted(t *testing.T) {
	c := Global{APIKey: "sk-or-123456", GeminiAPIKey: "abc"}
	r := c.Redacted()
	assert.Equal(t, "****3456", r.APIKey)
	assert.Equal(t, "****", r.GeminiAPIKey)
	assert.Equal(t, "sk-or-123456", c.APIKey)
}
