package cmd

import (
	"io"
	"log/slog"
)

// setupLogger creates a configured slog.Logger. JSON records go to out so they
// can be piped; text records go to errOut.
func setupLogger(levelStr string, jsonOutput bool, out, errOut io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(errOut, opts)
	}

	return slog.New(handler)
}
