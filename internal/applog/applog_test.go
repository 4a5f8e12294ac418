package applog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, zl := New(Config{Level: "info", Format: "json", Output: &buf})

	logger.Info("flow saved", slog.String("key", "flow-key"), slog.Int("nodes", 3))
	logger.Debug("hidden")
	require.NoError(t, zl.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "flow saved", rec["msg"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "flow-key", rec["key"])
	assert.Equal(t, float64(3), rec["nodes"])
	assert.Contains(t, rec, "time")
}

func TestNew_DebugConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, zl := New(Config{Level: "debug", Format: "console", Output: &buf})

	logger.Debug("connection rejected", slog.String("reason", "duplicate-source"))
	require.NoError(t, zl.Sync())

	assert.Contains(t, buf.String(), "connection rejected")
	assert.Contains(t, buf.String(), "duplicate-source")
}

func TestParseLevels(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseSlogLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, parseSlogLevel("verbose"))
	assert.Equal(t, "error", parseZapLevel("error").String())
	assert.Equal(t, "info", parseZapLevel("").String())
}
