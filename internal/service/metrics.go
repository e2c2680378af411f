package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the document generation collectors.
type Metrics struct {
	generations *prometheus.CounterVec
	duration    prometheus.Histogram
	validations *prometheus.CounterVec
}

// NewMetrics creates the generation collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odt_generations_total",
				Help: "Total number of document generations by outcome.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "odt_generation_duration_seconds",
			Help:    "Time spent validating, parsing and merging a document.",
			Buckets: prometheus.DefBuckets,
		}),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odt_template_validations_total",
				Help: "Total number of template validations by result.",
			},
			[]string{"valid"},
		),
	}

	for _, c := range []prometheus.Collector{m.generations, m.duration, m.validations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeGeneration(status string, seconds float64) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(status).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) observeValidation(valid bool) {
	if m == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	m.validations.WithLabelValues(label).Inc()
}
