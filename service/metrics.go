package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tallyhq/tally/ledger"
)

// metrics counts ledger operations by name and outcome. The status
// label is "ok" or the ledger error kind.
type metrics struct {
	operations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_ledger_operations_total",
			Help: "Ledger operations by operation name and outcome.",
		}, []string{"operation", "status"}),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *metrics) observe(operation string, err error) {
	status := "ok"
	if err != nil {
		status = ledger.KindOf(err).String()
	}
	m.operations.WithLabelValues(operation, status).Inc()
}
