// Package metrics declares the application's OpenTelemetry instruments.
// Instruments are created against the global meter provider; the operational
// HTTP server installs an SDK provider backed by a Prometheus exporter, so
// everything recorded here ends up on the metrics endpoint.
package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

//nolint: gochecknoglobals
var (
	meter = otel.Meter("resolver")

	// ResolutionsEnqueued counts resolution requests that resulted in a stored
	// pending resolution.
	ResolutionsEnqueued = mustInt64Counter("resolver_resolutions_enqueued_total",
		"Number of resolution requests accepted for background processing.")

	// ResolutionCacheHits counts requests served from a fresh stored result
	// instead of portal work.
	ResolutionCacheHits = mustInt64Counter("resolver_resolution_cache_hits_total",
		"Number of resolution requests answered from a previously completed resolution.")

	// ResolutionsCompleted counts background jobs that produced a match.
	ResolutionsCompleted = mustInt64Counter("resolver_resolutions_completed_total",
		"Number of resolution jobs that finished with a stored result.")

	// ResolutionsFailed counts background jobs that ended with a definitive
	// error. Transient portal errors that lead to a retry are not counted.
	ResolutionsFailed = mustInt64Counter("resolver_resolutions_failed_total",
		"Number of resolution jobs that finished with a definitive error.")

	// DocumentsFetched counts register documents downloaded and converted.
	DocumentsFetched = mustInt64Counter("resolver_documents_fetched_total",
		"Number of register documents fetched for resolved companies.")
)

func mustInt64Counter(name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		// the global meter only errors on invalid instrument names
		panic(err)
	}

	return counter
}
