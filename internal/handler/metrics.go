package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the discovery backend.
var Metrics = struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
	PipelineRuns     prometheus.Counter
	PipelineDuration prometheus.Histogram
	RankedChannels   prometheus.Histogram
	CachePurged      prometheus.Counter
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dreamwell_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dreamwell_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.PipelineRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dreamwell_pipeline_runs_total",
			Help: "Total completed discovery pipeline runs.",
		},
	)

	Metrics.PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dreamwell_pipeline_run_duration_seconds",
			Help:    "Wall-clock duration of discovery pipeline runs.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	Metrics.RankedChannels = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dreamwell_pipeline_ranked_channels",
			Help:    "Ranked channels returned per pipeline run.",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 25},
		},
	)

	Metrics.CachePurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dreamwell_cache_purged_rows_total",
			Help: "Expired cache rows removed via the purge endpoint.",
		},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "dreamwell_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "dreamwell_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.PipelineRuns,
		Metrics.PipelineDuration,
		Metrics.RankedChannels,
		Metrics.CachePurged,
	)
}

// observePipelineRun records one completed discovery run. No-op before
// InitMetrics.
func observePipelineRun(elapsed time.Duration, ranked int) {
	if Metrics.PipelineRuns == nil {
		return
	}
	Metrics.PipelineRuns.Inc()
	Metrics.PipelineDuration.Observe(elapsed.Seconds())
	Metrics.RankedChannels.Observe(float64(ranked))
}

// observeCachePurge records rows removed by a manual purge. No-op
// before InitMetrics.
func observeCachePurge(purged int64) {
	if Metrics.CachePurged == nil {
		return
	}
	Metrics.CachePurged.Add(float64(purged))
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	if strings.HasPrefix(path, "/api/channels/") && path != "/api/channels/export" {
		return "/api/channels/:channelId"
	}
	return path
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
