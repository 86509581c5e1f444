package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mutationAppliedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "schedule_service",
		Subsystem: "store",
		Name:      "last_mutation_applied_timestamp_seconds",
		Help:      "Unix timestamp of the most recent mutation applied to the session store.",
	})
	scheduleRefreshGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "schedule_service",
		Subsystem: "cache",
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the most recent session list refresh completed.",
	})
)

func init() {
	prometheus.MustRegister(mutationAppliedGauge, scheduleRefreshGauge)
}

// RecordMutationApplied updates the mutation watermark gauge.
func RecordMutationApplied(ts time.Time) {
	if ts.IsZero() {
		return
	}
	mutationAppliedGauge.Set(float64(ts.Unix()))
}

// RecordScheduleRefreshed updates the cache refresh watermark gauge.
func RecordScheduleRefreshed(ts time.Time) {
	if ts.IsZero() {
		return
	}
	scheduleRefreshGauge.Set(float64(ts.Unix()))
}
