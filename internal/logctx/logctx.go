// Package logctx carries the run's slog.Logger through contexts so every
// component logs with the same handler and base attributes.
package logctx

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger returns a new context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// LoggerFromContext retrieves the slog.Logger from the context, falling
// back to slog.Default() when none was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}
