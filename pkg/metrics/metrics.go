package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	DecisionsTotal *prometheus.CounterVec // verb=read|write|unknown, outcome=proceed|skip
	ErrorsTotal    *prometheus.CounterVec // kind=invalid_server|invalid_client|config
}

// New creates the collectors and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timecheck_decisions_total",
				Help: "Total timestamp checks by verb and outcome",
			},
			[]string{"verb", "outcome"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timecheck_errors_total",
				Help: "Total timestamp checks that failed before a decision",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.DecisionsTotal,
		m.ErrorsTotal,
	)

	return m
}

// Decision counts one decision. It is a no-op on a nil receiver.
func (m *Metrics) Decision(verb, outcome string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(verb, outcome).Inc()
}

// Error counts one failed check. It is a no-op on a nil receiver.
func (m *Metrics) Error(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}
