package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	l, err := New(Options{OutputPaths: []string{filepath.Join(t.TempDir(), "a.log")}})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = New(Options{Debug: true, OutputPaths: []string{filepath.Join(t.TempDir(), "b.log")}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewJSONWritesStructuredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(Options{JSON: true, OutputPaths: []string{path}})
	require.NoError(t, err)
	l.Warn("augmentation failed", zap.String("model", "m"))
	_ = l.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(b))), &entry))
	assert.Equal(t, "augmentation failed", entry["msg"])
	assert.Equal(t, "m", entry["model"])
	assert.Equal(t, "agentops", entry["logger"])
}
