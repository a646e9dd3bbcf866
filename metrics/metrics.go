// Package metrics defines the prometheus collectors exported by the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway collectors.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ChatStreamsTotal *prometheus.CounterVec
	RetentionDeleted *prometheus.CounterVec
	RetentionRuns    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "manna",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "manna",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"route"},
		),
		ChatStreamsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "manna",
				Subsystem: "chat",
				Name:      "streams_total",
				Help:      "Chat replies streamed by outcome (completed, failed, interrupted)",
			},
			[]string{"outcome"},
		),
		RetentionDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "manna",
				Subsystem: "retention",
				Name:      "deleted_total",
				Help:      "Rows deleted by the retention sweep",
			},
			[]string{"kind"},
		),
		RetentionRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "manna",
				Subsystem: "retention",
				Name:      "runs_total",
				Help:      "Retention sweeps by status (ok, partial)",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ChatStreamsTotal,
		m.RetentionDeleted,
		m.RetentionRuns,
	)
	return m
}
