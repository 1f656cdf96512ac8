package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/WhyILived/Dreamwell/internal/handler"
	"github.com/WhyILived/Dreamwell/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Discover *handler.DiscoverHandler
	Keywords *handler.KeywordsHandler
	Channels *handler.ExportHandler
	Cache    *handler.CacheHandler
	Health   *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health checks (before API group, no rate limiting)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus scrape endpoint
	app.Get("/metrics", handler.MetricsHandler())

	// Per-route rate limiters; the discovery pipeline burns provider
	// quota so its budget is the tightest.
	discoverLimit := middleware.NewDiscoverRateLimiter()
	keywordsLimit := middleware.NewKeywordsRateLimiter()
	channelsLimit := middleware.NewChannelsRateLimiter()
	exportLimit := middleware.NewExportRateLimiter()
	adminLimit := middleware.NewCacheAdminRateLimiter()

	// API routes
	api := app.Group("/api")

	// Discovery routes
	api.Post("/discover", h.Discover.Run, discoverLimit.Handler())
	api.Get("/weights", h.Discover.GetWeights)
	api.Put("/weights", h.Discover.SetWeights)

	// Keyword extraction routes
	api.Post("/keywords", h.Keywords.Scrape, keywordsLimit.Handler())

	// Channel catalog routes
	api.Get("/channels", h.Channels.List, channelsLimit.Handler())
	api.Get("/channels/export", h.Channels.ExportCSV, exportLimit.Handler())
	api.Get("/channels/:channelId", h.Channels.Get, channelsLimit.Handler())

	// Cache hygiene routes
	api.Get("/cache/stats", h.Cache.Stats, adminLimit.Handler())
	api.Post("/cache/purge", h.Cache.Purge, adminLimit.Handler())
}
