package tick

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors updated by a Ticker.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Ticks             prometheus.Counter
	Interrupts        prometheus.Counter
	ActionFailures    prometheus.Counter
	RegisteredActions prometheus.Gauge
	TickDuration      prometheus.Histogram
}

// NewMetrics creates the ticker collectors and registers them with reg.
// If reg == nil then prometheus.DefaultRegisterer is used.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tick_ticks_total",
			Help: "Total number of completed ticks",
		}),
		Interrupts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tick_interrupts_total",
			Help: "Total number of interrupted waits",
		}),
		ActionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tick_action_failures_total",
			Help: "Total number of failed action invocations",
		}),
		RegisteredActions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tick_registered_actions",
			Help: "Number of registered actions at the end of the last tick",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tick_duration_seconds",
			Help:    "Time spent invoking all registered actions",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(
		m.Ticks,
		m.Interrupts,
		m.ActionFailures,
		m.RegisteredActions,
		m.TickDuration,
	)
	return m
}

func (m *Metrics) observeTick(d Duration, registered, failed int) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.ActionFailures.Add(float64(failed))
	m.RegisteredActions.Set(float64(registered))
	m.TickDuration.Observe(d.Seconds())
}

func (m *Metrics) interrupted() {
	if m == nil {
		return
	}
	m.Interrupts.Inc()
}
