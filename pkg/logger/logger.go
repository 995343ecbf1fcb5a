// Package logger holds the process-wide structured logger used by the swarm
// engine, the CLI and the daemon.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler used for output.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

var (
	// Default is the default logger instance
	Default *slog.Logger
)

func init() {
	Default = New("info", os.Stdout)
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// New creates a JSON logger with the specified level and output
func New(level string, output io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// NewText creates a text-formatted logger, used by the CLI
func NewText(level string, output io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// NewWithFormat builds a logger for the given format name ("json" or "text").
func NewWithFormat(format Format, level string, output io.Writer) (*slog.Logger, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatJSON, "":
		return New(level, output), nil
	case FormatText:
		return NewText(level, output), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (must be json or text)", format)
	}
}

// Discard returns a logger that drops everything. Handy in tests and for
// library callers that want a silent optimizer.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// SetDefault sets the default logger
func SetDefault(logger *slog.Logger) {
	Default = logger
	slog.SetDefault(logger)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Default.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Default.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Default.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Default.Error(msg, args...)
}

// With returns a logger with additional attributes
func With(args ...any) *slog.Logger {
	return Default.With(args...)
}
