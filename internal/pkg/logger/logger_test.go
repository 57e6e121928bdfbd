package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", WithOutput(&buf))

	log.WithFields(map[string]any{"product_id": "prod_1"}).With("request_id", "abc").Error("Failed", errors.New("boom"))

	line := decodeLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "Failed", line["message"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "prod_1", line["product_id"])
	assert.Equal(t, "abc", line["request_id"])
}

func TestLogger_DefaultLevelByEnv(t *testing.T) {
	var buf bytes.Buffer
	New("production", WithOutput(&buf)).Debug("hidden")
	assert.Empty(t, buf.String())

	New("development", WithOutput(&buf)).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", WithOutput(&buf), WithLevel("warn"))

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warnf("shown %d", 1)
	assert.Equal(t, "shown 1", decodeLine(t, &buf)["message"])
}

func TestLogger_UnknownLevelIgnored(t *testing.T) {
	var buf bytes.Buffer
	New("production", WithOutput(&buf), WithLevel("chatty")).Info("shown")
	assert.Contains(t, buf.String(), "shown")
}
