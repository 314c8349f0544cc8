package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log is the process-wide logger. Safe to use before Initialize.
var Log *slog.Logger

func init() {
	Initialize("info", false)
}

// Initialize points Log at stdout.
func Initialize(level string, useJSON bool) {
	InitializeWithWriter(os.Stdout, level, useJSON)
}

// InitializeWithWriter is Initialize with an explicit destination; tests use
// it to silence or capture output.
func InitializeWithWriter(w io.Writer, level string, useJSON bool) {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if useJSON {
		handler = slog.NewJSONHandler(w, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// Component returns Log tagged with component=name. Call it after
// Initialize; the result does not follow later re-initialization.
func Component(name string) *slog.Logger {
	return Log.With("component", name)
}

// ParseLevel maps a config level name to slog.Level, info when unknown.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
