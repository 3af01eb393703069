// Package obs wires structured logging and Prometheus metrics for rok4d,
// the ambient observability stack named in SPEC_FULL.md §1.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// NewLogger builds the process-wide zap logger. Production deployments
// want JSON output; development/debug runs want the human-readable
// console encoder.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Metrics groups the counters/histograms rok4d exposes on /metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TileCacheHits   prometheus.Counter
	TileCacheMisses prometheus.Counter
	TilesDecoded    *prometheus.CounterVec
	ReprojectErrors prometheus.Counter
}

// NewMetrics registers rok4d's metrics against the given registry (pass
// prometheus.DefaultRegisterer in production, a fresh registry in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rok4d_requests_total",
			Help: "Total OGC requests served, labeled by operation and status.",
		}, []string{"operation", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rok4d_request_duration_seconds",
			Help:    "OGC request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		TileCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "rok4d_tile_cache_hits_total",
			Help: "Decoded-tile cache hits.",
		}),
		TileCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "rok4d_tile_cache_misses_total",
			Help: "Decoded-tile cache misses.",
		}),
		TilesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rok4d_tiles_decoded_total",
			Help: "Tiles decoded from storage, labeled by codec.",
		}, []string{"codec"}),
		ReprojectErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "rok4d_reproject_errors_total",
			Help: "Non-finite coordinates produced by CoordinateTransformer.",
		}),
	}
}
