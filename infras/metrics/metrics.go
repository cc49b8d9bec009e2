package metrics

import (
	"slotkeeper/config"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "slotkeeper"

// Metrics groups the collectors the booking engine reports to.
type Metrics struct {
	Transitions  *prometheus.CounterVec
	LockWait     *prometheus.HistogramVec
	LockTimeouts *prometheus.CounterVec
	SweepResults *prometheus.CounterVec
	Registry     *prometheus.Registry
}

// New registers collectors on a dedicated registry so tests and multiple
// binaries never collide on the default one.
func New(cfg *config.Config) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Lifecycle operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		LockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a resource lock.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"driver", "acquired"}),
		LockTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_timeouts_total",
			Help:      "Lock acquisitions that hit their timeout.",
		}, []string{"driver"}),
		SweepResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hold_sweep_rows_total",
			Help:      "Rows visited by the hold expiration sweep by result.",
		}, []string{"result"}),
		Registry: registry,
	}

	registry.MustRegister(m.Transitions, m.LockWait, m.LockTimeouts, m.SweepResults)

	if cfg.Metrics.Enable {
		registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}

	return m
}

// Transition counts one lifecycle operation.
func (m *Metrics) Transition(operation, outcome string) {
	if m == nil {
		return
	}

	m.Transitions.WithLabelValues(operation, outcome).Inc()
}

// Sweep counts one row handled by the expiration sweep.
func (m *Metrics) Sweep(result string) {
	if m == nil {
		return
	}

	m.SweepResults.WithLabelValues(result).Inc()
}
