// Package slogger provides structured logging for versync using Go's slog
// with charmbracelet/log as the handler. Output goes to stderr so that it
// lands in the build log and never mixes with a build script's stdout.
package slogger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type contextKey string

const loggerKey contextKey = "logger"

// Config holds logger configuration.
type Config struct {
	// Verbosity controls log level:
	// 0 (default) -> Info
	// 1+ (-v)     -> Debug
	Verbosity int

	// Quiet limits output to errors. Takes precedence over Verbosity.
	Quiet bool

	// Output is the writer for log output. Defaults to os.Stderr.
	Output io.Writer
}

// Level returns the charm log level for the configuration.
func (c Config) Level() charmlog.Level {
	switch {
	case c.Quiet:
		return charmlog.ErrorLevel
	case c.Verbosity >= 1:
		return charmlog.DebugLevel
	default:
		return charmlog.InfoLevel
	}
}

// New creates a new slog.Logger with charmbracelet/log as the handler.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	handler := charmlog.NewWithOptions(output, charmlog.Options{
		Level:           cfg.Level(),
		ReportTimestamp: false, // build logs carry their own timestamps
		ReportCaller:    false,
	})

	return slog.New(handler)
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context.
// Returns a discarding logger if none is set (never returns nil).
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(discardHandler{})
}

// L is a convenience alias for FromContext.
func L(ctx context.Context) *slog.Logger {
	return FromContext(ctx)
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
