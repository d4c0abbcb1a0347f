package telemetry

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("pipeline.started", map[string]any{"requestId": "req-1", "pages": 3})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "pipeline.started", entry["msg"])
	assert.Equal(t, "req-1", entry["requestId"])
	assert.EqualValues(t, 3, entry["pages"])
	assert.NotEmpty(t, entry["ts"])
}

func TestWarnAndErrorLevels(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("model.fallback", nil)
	Error("model.failed", map[string]any{"model": "m1"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"level":"warn"`)
	assert.Contains(t, string(lines[1]), `"level":"error"`)
	assert.Contains(t, string(lines[1]), `"model":"m1"`)
}
