package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger("formulation", Options{Writer: &buf})
	l.Infof("model %s built", "abc")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "formulation", rec["component"])
	assert.Equal(t, "model abc built", rec["message"])
	assert.Equal(t, "info", rec["level"])
}

func TestZerologLoggerDebugwFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger("formulation", Options{Writer: &buf})
	l.Debugw("scenario built", map[string]any{"scenario": "s1", "variables": 12})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "scenario built", rec["message"])
	assert.Equal(t, "s1", rec["scenario"])
	assert.InDelta(t, 12, rec["variables"], 1e-9)
	assert.Equal(t, "debug", rec["level"])
}

func TestZerologLoggerConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger("cli", Options{Console: true, Writer: &buf})
	l.Warnf("wrote %s", "out.lp")

	assert.Contains(t, buf.String(), "out.lp")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debugf("ignored %d", 1)
	l.Debugw("ignored", map[string]any{"k": 1})
	l.Infof("ignored")
	l.Warnf("ignored")
	l.Errorf("ignored")
}
