package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(elementsFetchesTotal, elementsAgeHours, predictionLatencyMs) }

var elementsFetchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "elements_fetches_total",
		Help: "Orbital element fetches by outcome (ok/error/stale_kept).",
	},
	[]string{"outcome"},
)

var elementsAgeHours = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "elements_age_hours",
		Help: "Age of the current orbital elements since their epoch, in hours.",
	},
)

var predictionLatencyMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "pass_prediction_latency_ms",
		Help:    "Pass window search latency in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	},
)

func IncElementsFetch(outcome string) {
	elementsFetchesTotal.WithLabelValues(norm(outcome)).Inc()
}

func SetElementsAge(hours float64) {
	elementsAgeHours.Set(hours)
}

func ObservePrediction(ms float64) {
	predictionLatencyMs.Observe(ms)
}
