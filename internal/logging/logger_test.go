package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, slog.LevelInfo, FormatJSON)
	logger.Debug("hidden")
	logger.Warn("unresolved", "error", errors.New("boom"), "question_id", "q1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "unresolved", rec["msg"])
	assert.Equal(t, "boom", rec["err"])
	assert.Equal(t, "q1", rec["question_id"])
	assert.NotContains(t, rec, "error")
}

func TestNewWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, slog.LevelDebug, FormatText).Debug("visible", "error", "x")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "err=x")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
