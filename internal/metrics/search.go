package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every metric name.
const Namespace = "tutorbook"

// Search and identity Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_queries_total",
			Help:      "Total number of index sub-queries",
		},
		[]string{"backend", "status"}, // status: "ok" / "error"
	)

	SearchQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_query_duration_seconds",
			Help:      "Index sub-query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)

	SearchMergedHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_merged_hits",
			Help:      "Unique hits per merged user search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		},
	)

	IdentityResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "identity_resolutions_total",
			Help:      "Caller identity resolutions by outcome",
		},
		[]string{"result"}, // "anonymous" / "ok" / "invalid_token" / "lookup_failed"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchQueryDuration)
	prometheus.MustRegister(SearchMergedHits)
	prometheus.MustRegister(IdentityResolutionsTotal)
	searchMetricsRegistered = true
}
