// Package observability holds the Prometheus collectors shared by the engine.
package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rasterizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aperture_rasterize_total",
			Help: "Aperture header/mask computations by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)

	rasterizeDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aperture_rasterize_duration_seconds",
			Help:    "Duration of aperture header/mask computations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100us to ~1.6s
		},
		[]string{"stage"},
	)

	maskPixels = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aperture_mask_pixels",
			Help:    "Number of grid points evaluated per mask.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		},
	)

	maskCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aperture_mask_cache_results_total",
			Help: "Mask cache lookups by tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	maskCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aperture_mask_cache_errors_total",
			Help: "Mask cache backend failures by tier and operation.",
		},
		[]string{"tier", "op"},
	)

	cacheOpTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Redis operations by op and result.",
		},
		[]string{"op", "result"},
	)

	redisOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Duration of Redis operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"op"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aperture_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

// Init also registers the collectors with reg, e.g. a metrics.Provider registry.
func Init(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{
		rasterizeTotal, rasterizeDurationSeconds, maskPixels,
		maskCacheResults, maskCacheErrors, cacheOpTotal, redisOpDurationSeconds,
		httpRequestsTotal, httpRequestDurationSeconds, buildInfo,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRasterize records one header ("header") or mask ("mask") computation.
func ObserveRasterize(stage string, err error, durationSeconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rasterizeTotal.WithLabelValues(stage, outcome).Inc()
	rasterizeDurationSeconds.WithLabelValues(stage).Observe(durationSeconds)
}

func ObserveMaskPixels(n int) {
	maskPixels.Observe(float64(n))
}

func IncMaskCacheHit(tier string) {
	maskCacheResults.WithLabelValues(tier, "hit").Inc()
}

func IncMaskCacheMiss(tier string) {
	maskCacheResults.WithLabelValues(tier, "miss").Inc()
}

func IncMaskCacheError(tier, op string) {
	maskCacheErrors.WithLabelValues(tier, op).Inc()
}

// ObserveCacheOp records one Redis round trip.
func ObserveCacheOp(op string, err error, durationSeconds float64) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	cacheOpTotal.WithLabelValues(op, res).Inc()
	redisOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
