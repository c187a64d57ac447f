// Package metrics defines Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagebot_events_total",
			Help: "Total number of inbound webhook events by type",
		},
		[]string{"type"},
	)

	SendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagebot_sends_total",
			Help: "Total number of outbound Send API calls by status",
		},
		[]string{"status"},
	)

	PlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagebot_plans_total",
			Help: "Total number of response plans executed by matched rule",
		},
		[]string{"rule"},
	)

	RemindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagebot_reminders_total",
			Help: "Total number of reminder attempts by outcome",
		},
		[]string{"status"},
	)
)

// Register registers all bot metrics with the default registry.
func Register() {
	prometheus.MustRegister(
		EventsTotal,
		SendsTotal,
		PlansTotal,
		RemindersTotal,
	)
}
