package metrics

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is a point-in-time summary of client activity.
type Snapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	DedupedFetches           uint64    `json:"deduped_fetches"`
	Invalidations            uint64    `json:"invalidations"`
	Refetches                uint64    `json:"refetches"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// Service records client-side Prometheus metrics. A nil *Service is valid
// and records nothing.
type Service struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	queryFetches    *prometheus.CounterVec
	invalidations   prometheus.Counter
	refetches       prometheus.Counter

	requestCount         uint64
	requestDurationTotal uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	dedupCount           uint64
	invalidationCount    uint64
	refetchCount         uint64
}

// New registers the client collectors on a private registry.
func New() *Service {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellness_api_request_duration_seconds",
		Help:    "Duration of backend API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wellness_api_requests_total",
		Help: "Total number of backend API requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wellness_cache_latency_seconds",
		Help:    "Latency for persisted cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wellness_cache_write_seconds",
		Help:    "Latency for persisted cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wellness_cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wellness_cache_hits_total",
		Help: "Total query cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wellness_cache_misses_total",
		Help: "Total query cache misses",
	})

	queryFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wellness_query_fetches_total",
		Help: "Query fetches by outcome (fetched or shared)",
	}, []string{"outcome"})

	invalidations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wellness_query_invalidations_total",
		Help: "Total query key prefixes invalidated",
	})

	refetches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wellness_query_refetches_total",
		Help: "Total background refetches after invalidation",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "wellness_goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, queryFetches, invalidations, refetches, goroutines)

	return &Service{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		queryFetches:    queryFetches,
		invalidations:   invalidations,
		refetches:       refetches,
	}
}

// WriteTextfile writes every collector in the Prometheus text format,
// ready for a node_exporter textfile collector. The write is atomic.
func (m *Service) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// ObserveAPIRequest records one backend round trip. status is 0 when no
// response was received.
func (m *Service) ObserveAPIRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and updates the hit ratio.
func (m *Service) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks persisted cache writes.
func (m *Service) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordFetch counts a query fetch; shared marks a caller that joined an
// in-flight request instead of issuing its own.
func (m *Service) RecordFetch(shared bool) {
	if m == nil {
		return
	}
	if shared {
		m.queryFetches.WithLabelValues("shared").Inc()
		atomic.AddUint64(&m.dedupCount, 1)
		return
	}
	m.queryFetches.WithLabelValues("fetched").Inc()
}

// RecordInvalidation counts invalidated prefixes.
func (m *Service) RecordInvalidation(prefixes int) {
	if m == nil || prefixes <= 0 {
		return
	}
	m.invalidations.Add(float64(prefixes))
	atomic.AddUint64(&m.invalidationCount, uint64(prefixes))
}

// RecordRefetch counts a background refetch.
func (m *Service) RecordRefetch() {
	if m == nil {
		return
	}
	m.refetches.Inc()
	atomic.AddUint64(&m.refetchCount, 1)
}

// Snapshot returns aggregated counters.
func (m *Service) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return Snapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheHitRatio:            ratio,
		DedupedFetches:           atomic.LoadUint64(&m.dedupCount),
		Invalidations:            atomic.LoadUint64(&m.invalidationCount),
		Refetches:                atomic.LoadUint64(&m.refetchCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
