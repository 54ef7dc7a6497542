// Package observability carries the service's logging and metrics concerns:
// the process logger, per-request ids, access-log annotations filled in by
// the answer handler, and the Prometheus collectors the metrics route serves.
package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/firmsight/firmsight/internal/config"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	noteKey
)

// NewLogger builds the process-wide logger. Every line carries the service
// name and profile; request-scoped attributes are added by the middleware.
func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	opts := &slog.HandlerOptions{Level: cfg.Observability.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(writer, opts)
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, opts)
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("profile", string(cfg.Profile)),
	)
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
