package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(notificationsTotal, evaluationLatencyMs) }

var notificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Gate outcomes per subscriber evaluation (notified/suppressed/failed).",
	},
	[]string{"outcome"},
)

var evaluationLatencyMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "gate_evaluation_latency_ms",
		Help:    "Full-event gate evaluation latency in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	},
)

func IncNotification(outcome string) {
	notificationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveEvaluation(ms float64) {
	evaluationLatencyMs.Observe(ms)
}
