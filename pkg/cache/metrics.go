package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks page responses served from Redis.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shovels_cache_hits_total",
			Help: "Total number of Shovels cache hits",
		},
	)

	// CacheMisses tracks requests that had to go to the API.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shovels_cache_misses_total",
			Help: "Total number of Shovels cache misses",
		},
	)

	// CacheErrors tracks cache operation errors by operation.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shovels_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
