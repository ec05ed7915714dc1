package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_TextFormatIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{MinLevel: DEBUG, Format: TextFormat, Output: &buf})

	logger.InfoWithFields("promoted program to jit backend", map[string]interface{}{"program": "hot"})

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "promoted program to jit backend")
	assert.Contains(t, out, "program=hot")
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{MinLevel: DEBUG, Format: JSONFormat, Output: &buf})

	logger.ErrorWithFields("target insert failed", map[string]interface{}{"error": "path not writable"})

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "target insert failed", entry.Message)
	assert.Equal(t, "path not writable", entry.Fields["error"])
}

func TestLogger_MinLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{MinLevel: WARN, Format: TextFormat, Output: &buf})

	logger.Info("should be dropped")
	logger.Debug("should also be dropped")
	assert.Empty(t, buf.String())

	logger.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestLogger_WithRunIDTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{MinLevel: DEBUG, Format: TextFormat, Output: &buf})

	runID := NewRunID()
	rl := logger.WithRunID(runID)
	rl.Info("compiling program")

	assert.Contains(t, buf.String(), "run_id="+runID)
}

func TestNewRunID_ProducesDistinctValues(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}

func TestLogLevel_String(t *testing.T) {
	cases := map[LogLevel]string{DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", ERROR: "ERROR", LogLevel(99): "UNKNOWN"}
	for level, want := range cases {
		assert.Equal(t, want, level.String())
	}
}

func TestDefaultConfig_FallsBackToStderr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, INFO, cfg.MinLevel)
	assert.Equal(t, TextFormat, cfg.Format)
	assert.NotNil(t, cfg.Output)
}

func TestNewLogger_NilOutputDefaultsToStderr(t *testing.T) {
	logger := NewLogger(Config{MinLevel: INFO})
	assert.NotNil(t, logger.config.Output)
}

func TestLogger_ConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{MinLevel: DEBUG, Format: TextFormat, Output: &buf})

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			logger.Info("concurrent message")
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 10, "each write must land as a single complete line")
}
