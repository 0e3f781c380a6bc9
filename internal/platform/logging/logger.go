package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	LevelEnv  = "GOV_LOG_LEVEL"
	FormatEnv = "GOV_LOG_FORMAT"
)

// NewFromEnv builds the process logger from GOV_LOG_LEVEL
// (debug|info|warn|error) and GOV_LOG_FORMAT (text|json).
func NewFromEnv(w io.Writer) *slog.Logger {
	return New(w, os.Getenv(LevelEnv), os.Getenv(FormatEnv))
}

func New(w io.Writer, level string, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to slog; unknown values keep info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
