package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthCheck reports a component as healthy by returning nil.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
}

func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	services := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			services[name] = "unavailable"
			status = "degraded"
			continue
		}
		services[name] = "connected"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  h.version,
		"services": services,
	})
}

// PoolStatsFunc returns the cache connection pool counters.
type PoolStatsFunc func() *redis.PoolStats

// CacheStats reports the tier cache connection pool.
func CacheStats(stats PoolStatsFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if stats == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "cache not configured"})
		}
		poolStats := stats()
		return c.JSON(fiber.Map{
			"pool_stats": fiber.Map{
				"hits":        poolStats.Hits,
				"misses":      poolStats.Misses,
				"timeouts":    poolStats.Timeouts,
				"total_conns": poolStats.TotalConns,
				"idle_conns":  poolStats.IdleConns,
				"stale_conns": poolStats.StaleConns,
			},
		})
	}
}
