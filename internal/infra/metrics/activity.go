package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(monitorPollsTotal, activityEventsTotal) }

var monitorPollsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "monitor_polls_total",
		Help: "Last-heard feed polls by outcome (ok/error).",
	},
	[]string{"outcome"},
)

var activityEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activity_events_total",
		Help: "Appended activity events by state (on/off).",
	},
	[]string{"state"},
)

func IncMonitorPoll(outcome string) {
	monitorPollsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncActivityEvent(state string) {
	activityEventsTotal.WithLabelValues(norm(state)).Inc()
}
