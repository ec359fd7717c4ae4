// Package logging builds the process logger and carries request-scoped
// loggers through a context.
package logging

import (
	"context"

	"go.uber.org/zap"
)

// New returns a production JSON logger in production and a human-readable
// development logger everywhere else.
func New(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

type loggerKey struct{}

type requestIDKey struct{}

// WithLogger attaches lg to ctx. A nil logger leaves ctx untouched.
func WithLogger(ctx context.Context, lg *zap.Logger) context.Context {
	if lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, lg)
}

// FromContext returns the logger stored in ctx, or the global zap logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if lg, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && lg != nil {
			return lg
		}
	}
	return zap.L()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
