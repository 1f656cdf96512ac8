package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/WhyILived/Dreamwell/internal/ai"
	"github.com/WhyILived/Dreamwell/internal/cache"
	"github.com/WhyILived/Dreamwell/internal/config"
	"github.com/WhyILived/Dreamwell/internal/db"
	"github.com/WhyILived/Dreamwell/internal/handler"
	"github.com/WhyILived/Dreamwell/internal/keywords"
	"github.com/WhyILived/Dreamwell/internal/middleware"
	"github.com/WhyILived/Dreamwell/internal/model"
	"github.com/WhyILived/Dreamwell/internal/repository"
	"github.com/WhyILived/Dreamwell/internal/router"
	"github.com/WhyILived/Dreamwell/internal/service"
	"github.com/WhyILived/Dreamwell/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "dreamwell")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres is optional: without it the service still discovers and
	// scores, it just cannot persist the catalog.
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, running without persistence")
		pool = nil
	} else {
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure schema")
		}
	}

	// Cache backend preference: Redis, then Postgres, then in-process
	// memory. Only the Postgres store retains expired rows, so the
	// sweep worker and hygiene endpoints come along only with it.
	redisStore := cache.NewRedis(cfg.RedisURL)
	var store cache.Store = redisStore
	var sweeper cache.Sweeper
	if redisStore.Client() == nil {
		if pool != nil {
			pgStore, err := cache.NewPostgres(ctx, pool)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize cache store")
			}
			store = pgStore
			sweeper = pgStore
			log.Info().Msg("cache: using postgres store")
		} else {
			store = cache.NewMemory()
			log.Info().Msg("cache: using in-memory store")
		}
	}

	searchTier := cache.NewTier[[]model.Channel](cache.TierSearch, store, cfg.Cache.SearchTTL)
	signalTier := cache.NewTier[service.Signal](cache.TierSignal, store, cfg.Cache.SignalTTL)
	scoreTier := cache.NewTier[model.ScoreRecord](cache.TierScore, store, cfg.Cache.ScoreTTL)

	yt := youtube.NewClient(cfg.YouTube.APIKey, cfg.YouTube.BaseURL, cfg.YouTube.Timeout)
	chat := ai.NewClient(cfg.Scoring.APIKey, cfg.Scoring.BaseURL, cfg.Scoring.Timeout)
	scraper := keywords.NewScraper(0)

	searchSvc := service.NewSearchService(yt, searchTier, cfg.Pipeline.SearchPages)
	enrichSvc := service.NewEnrichService(yt, signalTier, cfg.Pipeline.VideoSampleCap)
	scoreSvc := service.NewScoreService(chat, scoreTier, cfg.Scoring.Model)

	var repo *repository.ChannelRepo
	var sink service.ChannelSink
	if pool != nil {
		repo = repository.NewChannelRepo(pool)
		sink = repo
	}
	pipeline := service.NewPipelineService(searchSvc, enrichSvc, scoreSvc, sink, cfg.Pipeline.CandidateCap)

	if sweeper != nil {
		worker := service.NewSweepWorker(sweeper, cfg.Cache.SweepEvery)
		go worker.Start(ctx)
		defer worker.Stop()
	}

	handler.InitMetrics(pool)

	h := &router.Handlers{
		Discover: handler.NewDiscoverHandler(pipeline, scoreSvc),
		Keywords: handler.NewKeywordsHandler(scraper),
		Channels: handler.NewExportHandler(repo),
		Cache:    handler.NewCacheHandler(sweeper),
		Health:   handler.NewHealthHandler(pool, redisStore.Client()),
	}

	app := fiber.New(fiber.Config{
		AppName:      "Dreamwell API",
		ServerHeader: "Dreamwell",
	})
	router.Setup(app, h, cfg.CORSOrigins)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("dreamwell backend starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
