package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONWhenPiped(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, false)
	logger.Info("WebSocket send", "data", `{"type":"cmd","payload":"W"}`)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WebSocket send", record["msg"])
	assert.Equal(t, `{"type":"cmd","payload":"W"}`, record["data"])
}

func TestNewTextOnTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, true)
	logger.Info("hidden")
	logger.Warn("WebSocket closed")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `msg="WebSocket closed"`)
}
