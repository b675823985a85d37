package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "newsdesk"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter and backend."},
		[]string{"limiter", "backend"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter and backend."},
		[]string{"limiter", "backend"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	SearchQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "search_queries_total", Help: "Search queries by edition and whether anything matched."},
		[]string{"edition", "result"},
	)
	AdImpressions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "ad_impressions_total", Help: "Ad impressions served by placement."},
		[]string{"placement"},
	)
	AdClicks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "ad_clicks_total", Help: "Ad click-throughs."},
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total", Help: "Domain events handed to the bus by type and outcome."},
		[]string{"type", "outcome"},
	)
	ImproveRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "improve_requests_total", Help: "AI improve proxy calls by outcome."},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(SearchQueries)
	reg.MustRegister(AdImpressions)
	reg.MustRegister(AdClicks)
	reg.MustRegister(EventsPublished)
	reg.MustRegister(ImproveRequests)
}
