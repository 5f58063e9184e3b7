// Package obslog configures the operator-facing structured logger.
//
// It never carries the simulation's protocol output (that is
// eventlog's job) — obslog is for parse warnings, run start/end
// diagnostics, and emulation errors, kept separate from the timestamped
// event stream so neither can corrupt the other's format.
package obslog

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel converts a string to a slog.Level. Supported values:
// debug, info, warn, error (case-insensitive); empty defaults to info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
	}
}

// New builds a text-handler logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
