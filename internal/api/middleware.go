package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/ptzdeck/internal/logging"
	"github.com/smazurov/ptzdeck/internal/metrics"
)

// HTTPLoggingMiddleware logs API requests with a level derived from the
// status code and records their latency.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	logger := logging.GetLogger("api")

	method := ctx.Method()
	logAttrs := []slog.Attr{
		slog.String("method", method),
		slog.String("path", ctx.URL().Path),
		slog.String("remote_addr", ctx.RemoteAddr()),
	}
	if query := ctx.URL().RawQuery; query != "" {
		logAttrs = append(logAttrs, slog.String("query", query))
	}

	next(ctx)

	duration := time.Since(start)
	status := ctx.Status()
	if status == 0 {
		status = http.StatusOK
	}
	operation := "unknown"
	if op := ctx.Operation(); op != nil {
		operation = op.OperationID
	}
	metrics.APIRequest(method, operation, status, duration)

	logAttrs = append(logAttrs,
		slog.String("operation", operation),
		slog.Int("status", status),
		slog.Duration("duration", duration),
	)

	message := "API request completed"
	switch {
	case method == http.MethodOptions || operation == "health-check":
		logger.LogAttrs(ctx.Context(), slog.LevelDebug, message, logAttrs...)
	case status >= 500:
		logger.LogAttrs(ctx.Context(), slog.LevelError, message, logAttrs...)
	case status >= 400:
		logger.LogAttrs(ctx.Context(), slog.LevelWarn, message, logAttrs...)
	default:
		logger.LogAttrs(ctx.Context(), slog.LevelInfo, message, logAttrs...)
	}
}
