package schedule

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheFetchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schedule_service",
		Subsystem: "cache",
		Name:      "fetches_total",
		Help:      "Number of session list fetches grouped by result.",
	}, []string{"result"})

	cacheCoalescedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schedule_service",
		Subsystem: "cache",
		Name:      "coalesced_fetches_total",
		Help:      "Number of invalidations folded into an already outstanding fetch.",
	})

	mutationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schedule_service",
		Subsystem: "mutations",
		Name:      "applied_total",
		Help:      "Number of mutation commands grouped by kind and outcome.",
	}, []string{"kind", "outcome"})
)

func init() {
	prometheus.MustRegister(cacheFetchCounter, cacheCoalescedCounter, mutationCounter)
}

func recordCacheFetch(result string) {
	cacheFetchCounter.WithLabelValues(result).Inc()
}

func recordCacheCoalesced() {
	cacheCoalescedCounter.Inc()
}

func recordMutation(kind, outcome string) {
	mutationCounter.WithLabelValues(kind, outcome).Inc()
}
