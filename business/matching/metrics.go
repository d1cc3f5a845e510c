package matching

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecomputeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_recompute_total",
			Help: "Count of per-user match recompute jobs by outcome.",
		},
		[]string{"outcome"},
	)

	RecomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_recompute_duration_seconds",
		Help:    "Duration of one per-user match recompute job.",
		Buckets: prometheus.DefBuckets,
	})

	RecomputeRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_recompute_retries_total",
		Help: "Transient recompute failures that were retried.",
	})

	TriggersCoalescedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_triggers_coalesced_total",
		Help: "Recompute triggers absorbed into an already pending run.",
	})
)

func init() {
	prometheus.MustRegister(
		RecomputeTotal,
		RecomputeDuration,
		RecomputeRetries,
		TriggersCoalescedTotal,
	)
}
