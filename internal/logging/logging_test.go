package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, done, err := New(Options{Console: &buf})
	require.NoError(t, err)

	logger.Info("Navigating to app...", zap.String("url", "http://localhost:5173"))
	logger.Debug("hidden")
	done()

	out := buf.String()
	assert.Contains(t, out, "Navigating to app...")
	assert.Contains(t, out, "http://localhost:5173")
	assert.NotContains(t, out, "hidden")
}

func TestNDJSONFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.ndjson")
	logger, done, err := New(Options{Console: &buf, File: path, Debug: true})
	require.NoError(t, err)

	logger.Info("first", zap.String("step", "navigate"))
	logger.Debug("second")
	done()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "first", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "navigate", entry["step"])
	assert.NotEmpty(t, entry["ts"])
}
