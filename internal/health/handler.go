package health

import (
	"context"
	"maps"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler handles health check operations.
type Handler struct {
	checks map[string]Checker
}

// NewHandler creates a health handler over named dependency checks.
func NewHandler(checks map[string]Checker) *Handler {
	return &Handler{checks: checks}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
}

// Check performs a health check of the application and its dependencies.
// Any unhealthy dependency degrades the overall status.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Dependencies = make(map[string]string, len(h.checks))

	for _, name := range slices.Sorted(maps.Keys(h.checks)) {
		if err := h.checks[name].Ping(ctx); err != nil {
			resp.Body.Dependencies[name] = "unhealthy"
			resp.Body.Status = "degraded"

			continue
		}

		resp.Body.Dependencies[name] = "healthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
