// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 523a25d0-8b93-47b4-8679-686c6b91315b

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeExpired = "expired"
	OutcomeCorrupt = "corrupt"
)

var (
	registerOnce sync.Once

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "readora",
		Name:      "cache_lookups_total",
		Help:      "Total number of cache lookups by outcome",
	}, []string{"outcome"})
	cacheWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "readora",
		Name:      "cache_writes_total",
		Help:      "Total number of cache writes by result",
	}, []string{"result"})
	catalogRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "readora",
		Name:      "catalog_requests_total",
		Help:      "Total number of catalog requests by operation and result",
	}, []string{"op", "result"})
	catalogDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "readora",
		Name:      "catalog_request_duration_seconds",
		Help:      "Histogram of catalog request durations in seconds by operation",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	}, []string{"op"})
	downloadsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "readora",
		Name:      "downloads_total",
		Help:      "Current number of saved books",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(cacheLookups, cacheWrites, catalogRequests, catalogDuration, downloadsGauge)
	})
}

func IncCacheLookup(outcome string) { cacheLookups.WithLabelValues(outcome).Inc() }

func IncCacheWrite(ok bool) {
	if ok {
		cacheWrites.WithLabelValues("ok").Inc()
		return
	}
	cacheWrites.WithLabelValues("error").Inc()
}

// ObserveCatalogRequest records one catalog call and its latency.
func ObserveCatalogRequest(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	catalogRequests.WithLabelValues(op, result).Inc()
	catalogDuration.WithLabelValues(op).Observe(d.Seconds())
}

func SetDownloads(n int) { downloadsGauge.Set(float64(n)) }
