package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "earthlens",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "earthlens",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "earthlens",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Earth Engine call metrics
	EECallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "earthlens",
		Subsystem: "earthengine",
		Name:      "calls_total",
		Help:      "Total Earth Engine REST calls",
	}, []string{"operation", "outcome"})

	EECallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "earthlens",
		Subsystem: "earthengine",
		Name:      "call_duration_seconds",
		Help:      "Earth Engine REST call latency in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
	}, []string{"operation"})

	// Monitoring-specific metrics
	TileLayersServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "earthlens",
		Subsystem: "monitoring",
		Name:      "tile_layers_served_total",
		Help:      "Total tile layer URLs issued, by layer",
	}, []string{"layer"})

	SeriesObservations = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "earthlens",
		Subsystem: "monitoring",
		Name:      "series_observations",
		Help:      "Observations returned per time series request",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 256},
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveEECall records one Earth Engine REST call.
func ObserveEECall(operation string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EECallsTotal.WithLabelValues(operation, outcome).Inc()
	EECallDuration.WithLabelValues(operation).Observe(d.Seconds())
}
