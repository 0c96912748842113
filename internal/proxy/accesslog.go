package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestIDFromCtx returns the request ID stored by AccessLogMiddleware, if any.
func requestIDFromCtx(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

// AccessLogMiddleware logs HTTP requests with structured slog output and records
// request metrics. The request ID is copied into the user context for downstream logs.
// Logs: method, path, status, latency, bytes sent, request ID, and error (if any).
func AccessLogMiddleware(log *slog.Logger, appMetrics *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		requestID, _ := c.Locals("requestid").(string)
		if requestID != "" {
			c.SetUserContext(context.WithValue(c.UserContext(), requestIDKey, requestID))
		}

		err := c.Next()
		if err != nil {
			// let the app error handler write the response before it is logged
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("latency", latency.String()),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("request_id", requestID),
		}

		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= fiber.StatusBadRequest {
			level = slog.LevelWarn
		}

		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		log.LogAttrs(c.UserContext(), level, fmt.Sprintf("%s %s", method, path), attrs...)

		if appMetrics != nil {
			route := c.Route().Path
			appMetrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			appMetrics.HTTPSeconds.WithLabelValues(method, route).Observe(latency.Seconds())
		}

		return nil
	}
}
