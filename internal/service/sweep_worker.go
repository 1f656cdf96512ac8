package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/WhyILived/Dreamwell/internal/cache"
)

// SweepWorker is a periodic background job that purges expired rows
// from the durable cache store. Lazy eviction keeps reads correct on
// its own; the sweep is storage hygiene.
type SweepWorker struct {
	sweeper  cache.Sweeper
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweepWorker creates a worker that ticks every interval.
func NewSweepWorker(sweeper cache.Sweeper, interval time.Duration) *SweepWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepWorker{
		sweeper:  sweeper,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop. It runs one tick immediately, then
// every interval, until the context is cancelled or Stop is called.
func (w *SweepWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("sweep-worker: starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Info().Msg("sweep-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Info().Msg("sweep-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *SweepWorker) Stop() {
	close(w.stopCh)
}

func (w *SweepWorker) tick(ctx context.Context) {
	start := time.Now()
	purged, err := w.sweeper.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep-worker: purge failed")
		return
	}
	log.Info().Int64("purged", purged).Dur("elapsed", time.Since(start)).Msg("sweep-worker: tick complete")
}
