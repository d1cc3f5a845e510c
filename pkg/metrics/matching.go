package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the match listing HTTP handler
	MatchListLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_list_latency_seconds",
		Help:    "Latency of the match listing handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of match listing requests served
	MatchListRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_list_requests_total",
		Help: "Total number of match listing requests",
	})

	// Cache hits/misses on the redis match listing cache
	MatchCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_cache_lookups_total",
			Help: "Match listing cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(
		MatchListLatency,
		MatchListRequests,
		MatchCacheHits,
	)
}
