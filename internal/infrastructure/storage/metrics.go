package storage

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts store activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	resets *prometheus.CounterVec
	writes *prometheus.CounterVec
}

// NewMetrics creates the store collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_resets_total",
				Help: "Number of times a store file was unreadable and reset to an empty array",
			},
			[]string{"file", "phase"},
		),
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_writes_total",
				Help: "Number of store file writes by result",
			},
			[]string{"file", "result"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.resets, m.writes)
	}

	return m
}

func (m *Metrics) observeReset(file, phase string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(file, phase).Inc()
}

func (m *Metrics) observeWrite(file string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes.WithLabelValues(file, result).Inc()
}
