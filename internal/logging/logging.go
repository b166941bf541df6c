// Package logging provides the structured logger used across lectern,
// built on [log/slog]. A logger is constructed once at startup via [New]
// and handed to request handlers through context values with
// [WithLogger] / [FromContext].
//
// Environment variables:
//
//	LOG_LEVEL  = debug | info | warn | error  (default: info)
//	LOG_FORMAT = json | text                  (default: json)
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// ctxKey is the unexported context key type for this package.
type ctxKey struct{}

// New constructs a [*slog.Logger] from LOG_LEVEL and LOG_FORMAT.
// JSON output is the default so logs are machine-parseable in production;
// LOG_FORMAT=text is friendlier for local runs.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}

	var h slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, opts)
	default:
		h = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(h)
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the [*slog.Logger] stored in ctx, or [slog.Default]
// when none is present, so callers never need a nil check.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// levelFromEnv maps LOG_LEVEL to a [slog.Level], defaulting to Info on
// unknown or empty values.
func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
