package runtime

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		hasError bool
	}{
		{"DEBUG", slog.LevelDebug, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"WARNING", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"OFF", LevelOff, false},
		{"NONE", LevelOff, false},
		{"invalid", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "OFF", LevelName(LevelOff))
	assert.Equal(t, "WARN", LevelName(slog.LevelWarn))
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	logger.Debug("This should not appear")
	logger.Info("This should appear")
	logger.Warn("This warning should appear")

	logs := buf.String()
	assert.NotContains(t, logs, "This should not appear")
	assert.Contains(t, logs, "This should appear")
	assert.Contains(t, logs, "This warning should appear")
}

func TestInterpreterLogsDefinitions(t *testing.T) {
	var buf bytes.Buffer
	in := NewInterpreter(StandardConstants().Build(), WithLogger(NewLogger(&buf, slog.LevelDebug)))
	require.NoError(t, in.Run(program(def("f", params("x"), ret(vr("x"))))))
	assert.Contains(t, buf.String(), "defined function")
	assert.Contains(t, buf.String(), "name=f")
}
