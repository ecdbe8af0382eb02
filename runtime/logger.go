package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelOff sits above every level slog emits so nothing gets through.
const LevelOff = slog.Level(100)

// ParseLogLevel parses a level name into a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "OFF", "NONE":
		return LevelOff, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// LevelName is the inverse of ParseLogLevel.
func LevelName(level slog.Level) string {
	if level >= LevelOff {
		return "OFF"
	}
	return level.String()
}

// NewLogger creates a plain text logger writing to output at the given level.
func NewLogger(output io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
}

// QuietLogger drops everything.  Used by tests and embedders that do not
// want interpreter diagnostics.
func QuietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
