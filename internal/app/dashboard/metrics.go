package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tourstats_query_duration_seconds",
			Help:    "Time spent computing a dashboard view",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)
	matchedRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tourstats_query_rows",
			Help: "Rows matched by the most recent filter of a view",
		},
		[]string{"view"},
	)
)

// RegisterMetrics registers the dashboard collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(queryDuration, matchedRows)
}

func observe(view string) func() {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues(view))
	return func() { timer.ObserveDuration() }
}
