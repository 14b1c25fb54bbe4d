package middleware

import (
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// AccessLog logs one line per handled request.
func AccessLog(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		logger.Info("request",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.URL().Path),
			zap.Int("status", ctx.Status()),
			zap.String("client_ip", extractClientIP(ctx)),
			zap.String("user_agent", ctx.Header("User-Agent")),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func extractClientIP(ctx huma.Context) string {
	// X-Forwarded-For may contain a chain; the first entry is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.RemoteAddr()
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}

	return host
}
