// Package metrics provides the centralized Prometheus metrics reference for
// the API client. All metrics are defined in their respective packages
// (dispatch, cache) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/dispatch):
//   - api_requests_total{endpoint, outcome} (Counter): Dispatched requests by endpoint and outcome
//   - api_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - api_errors_total{class} (Counter): Terminal failures by class
//
// Retry Metrics (pkg/dispatch):
//   - api_retries_total{error_class} (Counter): Scheduled retry attempts by error class
//   - api_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - api_retry_exhausted_total{error_class} (Counter): Requests that exhausted their retry policy
//
// Cache Metrics (pkg/cache):
//   - api_cache_hits_total{layer} (Counter): Cache hits by backend layer
//   - api_cache_misses_total (Counter): Cache misses
//   - api_cache_size_bytes{layer} (Gauge): Cached payload bytes by backend layer
//   - api_cache_errors_total{operation} (Counter): Cache operation errors
//   - api_cache_evictions_total{reason} (Counter): Defensive cache entry removals
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(api_cache_hits_total[5m])) /
//   (sum(rate(api_cache_hits_total[5m])) + sum(rate(api_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(api_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))
//
//   # Retry Pressure
//   rate(api_retries_total[5m])
