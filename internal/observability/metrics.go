package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the bot.
type Metrics struct {
	// Source adapter metrics.
	SourceFetches       *prometheus.CounterVec   // labels: source={aurora,planetary,regional,weather}, outcome={ok,unavailable}
	SourceFetchDuration *prometheus.HistogramVec // labels: source

	// Threshold monitor metrics.
	MonitorTicks    *prometheus.CounterVec // labels: result={idle,triggered,unavailable}
	LastKpIndex     prometheus.Gauge
	ThresholdAlerts prometheus.Counter

	// Dispatch metrics.
	Deliveries  *prometheus.CounterVec // labels: outcome={delivered,failed}
	Subscribers prometheus.Gauge

	// Chat command metrics.
	Commands *prometheus.CounterVec // labels: command, outcome={ok,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SourceFetches,
		m.SourceFetchDuration,
		m.MonitorTicks,
		m.LastKpIndex,
		m.ThresholdAlerts,
		m.Deliveries,
		m.Subscribers,
		m.Commands,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build
// as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora_bot",
			Name:      "source_fetch_total",
			Help:      "Upstream source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aurora_bot",
			Name:      "source_fetch_duration_seconds",
			Help:      "Upstream source round-trip duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		MonitorTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora_bot",
			Name:      "monitor_ticks_total",
			Help:      "Threshold monitor ticks by result.",
		}, []string{"result"}),
		LastKpIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aurora_bot",
			Name:      "kp_index",
			Help:      "Planetary K-index seen by the last successful monitor tick.",
		}),
		ThresholdAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aurora_bot",
			Name:      "threshold_alerts_total",
			Help:      "Ticks whose K-index crossed the alert threshold.",
		}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora_bot",
			Name:      "deliveries_total",
			Help:      "Broadcast deliveries by outcome.",
		}, []string{"outcome"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aurora_bot",
			Name:      "subscribers",
			Help:      "Recipients targeted by the last broadcast.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aurora_bot",
			Name:      "commands_total",
			Help:      "Chat commands handled by command and outcome.",
		}, []string{"command", "outcome"}),
	}
}
