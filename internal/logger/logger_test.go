package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level string, format OutputFormat, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetTestOutput(&buf)
	t.Cleanup(UnsetTestOutput)

	InitLogger(level, format)
	fn()
	return buf.String()
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		log   func()
		shown bool
	}{
		{"failed download at debug", "debug", func() { Debug("Download failed") }, true},
		{"failed download at info", "info", func() { Debug("Download failed") }, false},
		{"unavailable date at info", "info", func() { Warn("No candidate available") }, true},
		{"unavailable date at error", "error", func() { Warn("No candidate available") }, false},
		{"log write error at error", "error", func() { Error("Could not write failure log") }, true},
		{"unknown level falls back to info", "loud", func() { Info("Starting batch") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(t, tt.level, FormatText, tt.log)
			if tt.shown {
				assert.NotEmpty(t, out)
			} else {
				assert.Empty(t, out)
			}
		})
	}
}

func TestBatchFields(t *testing.T) {
	out := capture(t, "info", FormatText, func() {
		Info("Starting batch",
			Fields{"batch_id": "3f1c", "product": "clk"},
			Fields{"dates": 2, "agencies": 1})
	})

	assert.Contains(t, out, `msg="Starting batch"`)
	assert.Contains(t, out, "batch_id=3f1c")
	assert.Contains(t, out, "product=clk")
	assert.Contains(t, out, "dates=2")
	assert.Contains(t, out, "agencies=1")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestJSONFormat(t *testing.T) {
	out := capture(t, "info", FormatJSON, func() {
		Warn("No candidate available", Fields{"batch_id": "3f1c", "date": "2023-01-16", "agency": "ckm"})
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "No candidate available", entry["msg"])
	assert.Equal(t, "3f1c", entry["batch_id"])
	assert.Equal(t, "2023-01-16", entry["date"])
	assert.Equal(t, "ckm", entry["agency"])
}

func TestSuccess(t *testing.T) {
	out := capture(t, "info", FormatText, func() {
		Success("Configuration initialized", Fields{"path": "/tmp/config.yaml"})
	})
	assert.Contains(t, out, "status=success")
	assert.Contains(t, out, "path=/tmp/config.yaml")
}

func TestSetTestOutput_AfterInit(t *testing.T) {
	InitLogger("info", FormatText)

	var buf bytes.Buffer
	SetTestOutput(&buf)
	t.Cleanup(UnsetTestOutput)

	Info("Batch finished")
	assert.Contains(t, buf.String(), "Batch finished")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"trace", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in    string
		want  OutputFormat
		valid bool
	}{
		{"text", FormatText, true},
		{"", FormatText, true},
		{"JSON", FormatJSON, true},
		{"xml", FormatText, false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
	}
}
