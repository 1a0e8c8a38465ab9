// Package metrics holds the process's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PageCacheRequests counts page lookups by cache status.
	PageCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyline_page_cache_requests_total",
		Help: "Page cache lookups by status (HIT, MISS, STALE)",
	}, []string{"status"})

	// PageGenerations counts page generations by outcome.
	PageGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyline_page_generations_total",
		Help: "Page generations by outcome",
	}, []string{"outcome"})

	// CMSRequests counts calls to the content backend.
	CMSRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyline_cms_requests_total",
		Help: "Content backend requests by operation and outcome",
	}, []string{"operation", "outcome"})

	// CommentSubmissions counts comment endpoint results.
	CommentSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyline_comment_submissions_total",
		Help: "Comment submissions by outcome",
	}, []string{"outcome"})

	// HTTPRequestDuration records handler latency by route and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storyline_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

// Outcome labels err as "ok" or "error".
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
