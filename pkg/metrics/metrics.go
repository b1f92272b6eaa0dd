// Package metrics provides the centralized Prometheus metrics reference for
// the Shovels client. All metrics are defined in their respective packages
// (client, pagination, cache) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Shovels client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - shovels_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - shovels_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - shovels_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Pagination Metrics (pkg/pagination):
//   - shovels_pagination_iterations (Histogram): Page fetches per pagination chain
//   - shovels_pagination_aborted_total{reason} (Counter): Chains stopped early
//     (reason: fetch_error, max_iterations)
//
// Cache Metrics (pkg/cache):
//   - shovels_cache_hits_total (Counter): Page responses served from Redis
//   - shovels_cache_misses_total (Counter): Requests that went to the API
//   - shovels_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(shovels_cache_hits_total[5m]) /
//   (rate(shovels_cache_hits_total[5m]) + rate(shovels_cache_misses_total[5m]))
//
//   # Request Error Rate
//   rate(shovels_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(shovels_request_duration_seconds_bucket[5m]))
//
//   # Chains Cut Short by Failures
//   rate(shovels_pagination_aborted_total{reason="fetch_error"}[5m])
