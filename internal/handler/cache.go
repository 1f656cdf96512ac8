package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/WhyILived/Dreamwell/internal/cache"
	"github.com/WhyILived/Dreamwell/internal/middleware"
)

// CacheHandler exposes hygiene endpoints for the durable cache store.
// Both endpoints report 503 when no sweepable store is configured.
type CacheHandler struct {
	sweeper cache.Sweeper
}

func NewCacheHandler(sweeper cache.Sweeper) *CacheHandler {
	return &CacheHandler{sweeper: sweeper}
}

// Stats handles GET /api/cache/stats.
func (h *CacheHandler) Stats(c fiber.Ctx) error {
	if h.sweeper == nil {
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "CACHE_DISABLED", "No durable cache store configured")
	}
	stats, err := h.sweeper.CacheStats(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read cache stats")
	}
	return c.JSON(stats)
}

// Purge handles POST /api/cache/purge — removes expired rows now
// instead of waiting for the background sweep.
func (h *CacheHandler) Purge(c fiber.Ctx) error {
	if h.sweeper == nil {
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "CACHE_DISABLED", "No durable cache store configured")
	}
	purged, err := h.sweeper.PurgeExpired(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to purge cache")
	}
	observeCachePurge(purged)
	return c.JSON(fiber.Map{"purged": purged})
}
