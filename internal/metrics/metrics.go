// Package metrics exposes Prometheus collectors for the acquisition engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TotalRequests tracks the number of HTTP requests dispatched at the provider.
	TotalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drawsync_requests_total",
		Help: "The total number of HTTP requests sent.",
	})
	// TotalRequestErrors tracks requests that ended in a transport or server error.
	TotalRequestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drawsync_request_errors_total",
		Help: "The total number of failed HTTP requests.",
	})
	// TotalRateLimitHits tracks the number of HTTP 429 responses.
	TotalRateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drawsync_rate_limit_hits_total",
		Help: "The total number of times the provider rate limited us.",
	})
	// TotalRejections tracks rows the normalizer refused to turn into records.
	TotalRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drawsync_normalizer_rejections_total",
		Help: "The total number of raw rows rejected during normalization.",
	})
	// TotalRecordsMerged tracks records newly added or upgraded in the store.
	TotalRecordsMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drawsync_records_merged_total",
		Help: "The total number of records added to or upgraded in the store.",
	})
	// TotalRunsExhausted tracks runs where neither source yielded a record.
	TotalRunsExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drawsync_runs_exhausted_total",
		Help: "The total number of runs with zero records from both the API and the HTML fallback.",
	})
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
