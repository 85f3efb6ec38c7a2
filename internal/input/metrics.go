package input

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the router collectors.
type Metrics struct {
	keys    *prometheus.CounterVec
	pointer *prometheus.CounterVec
}

// NewMetrics creates the router collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		keys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagedit",
			Subsystem: "input",
			Name:      "key_events_total",
			Help:      "Key events by focus mode and routing outcome.",
		}, []string{"focus", "outcome"}),
		pointer: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagedit",
			Subsystem: "input",
			Name:      "pointer_events_total",
			Help:      "Pointer events by focus mode and routing outcome.",
		}, []string{"focus", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.keys, m.pointer)
	}
	return m
}
