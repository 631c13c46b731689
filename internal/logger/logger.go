// Package logger provides process-wide structured logging for the frogfind
// server and CLI.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(New(Options{}))
}

// Options configures the logger.
type Options struct {
	Debug  bool         // Debug level, with source locations
	Quiet  bool         // Errors only; wins over Debug
	JSON   bool         // JSON lines instead of logfmt-style text
	Output io.Writer    // Defaults to stderr
	Logger *slog.Logger // Used as-is when set
}

// Init installs a logger built from opts as the process logger.
func Init(opts Options) {
	SetLogger(New(opts))
}

// New builds a logger from opts without installing it.
func New(opts Options) *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     levelFor(opts),
		AddSource: opts.Debug && !opts.Quiet,
	}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

func levelFor(opts Options) slog.Level {
	switch {
	case opts.Quiet:
		return slog.LevelError
	case opts.Debug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// SetLogger replaces the process logger, e.g. with one owned by a test.
// A nil logger is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		current.Store(l)
	}
}

// Get returns the current process logger.
func Get() *slog.Logger {
	return current.Load()
}

// Component returns a logger tagged with the emitting component, such as
// "server" or "article".
func Component(name string) *slog.Logger {
	return Get().With("component", name)
}

// Enabled reports whether messages at level would be written.
func Enabled(ctx context.Context, level slog.Level) bool {
	return Get().Enabled(ctx, level)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}

// DebugContext logs a debug message with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	Get().DebugContext(ctx, msg, args...)
}

// InfoContext logs an info message with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

// WarnContext logs a warning message with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	Get().WarnContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}
