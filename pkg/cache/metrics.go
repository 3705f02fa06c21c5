package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend layer.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"layer"}, // "redis", "memory"
	)

	// CacheMisses tracks cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheSize tracks cached payload bytes by backend layer.
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "api_cache_size_bytes",
			Help: "Current size of the response cache in bytes",
		},
		[]string{"layer"},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "lookup", "store", "remove", "clear"
	)

	// CacheEvictions tracks entries removed to protect cache integrity,
	// e.g. after a payload failed model mapping.
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_evictions_total",
			Help: "Total number of cache entries removed defensively",
		},
		[]string{"reason"}, // "mapping_failure"
	)
)
