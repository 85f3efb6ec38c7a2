package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	commits    prometheus.Counter
	amendments *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	panics     *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewMetrics creates the pipeline collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pagedit",
			Subsystem: "pipeline",
			Name:      "commits_total",
			Help:      "Committed transactions.",
		}),
		amendments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagedit",
			Subsystem: "pipeline",
			Name:      "amendments_total",
			Help:      "Amending transactions returned by interceptors.",
		}, []string{"interceptor"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagedit",
			Subsystem: "pipeline",
			Name:      "rejected_total",
			Help:      "Transactions that could not be applied.",
		}, []string{"reason"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagedit",
			Subsystem: "pipeline",
			Name:      "interceptor_panics_total",
			Help:      "Recovered interceptor panics.",
		}, []string{"interceptor"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pagedit",
			Subsystem: "pipeline",
			Name:      "dispatch_seconds",
			Help:      "Time spent applying and amending one transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.commits, m.amendments, m.rejected, m.panics, m.duration)
	}
	return m
}
