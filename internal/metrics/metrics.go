package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	AvailabilityChecks *prometheus.CounterVec
	Settlements        *prometheus.CounterVec
	LedgerDebitsFailed prometheus.Counter
	SettlementDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AvailabilityChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paygate_availability_checks_total",
				Help: "Availability evaluations by outcome.",
			},
			[]string{"outcome"},
		),
		Settlements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paygate_settlements_total",
				Help: "Settlement attempts by final status.",
			},
			[]string{"status"},
		),
		LedgerDebitsFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "paygate_ledger_debits_failed_total",
				Help: "Debits that failed after the payment record was written.",
			},
		),
		SettlementDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "paygate_settlement_duration_seconds",
				Help: "Time taken to settle one pay action.",
			},
		),
	}

	reg.MustRegister(
		m.AvailabilityChecks,
		m.Settlements,
		m.LedgerDebitsFailed,
		m.SettlementDuration,
	)
	return m
}

// NewForTest builds metrics on a private registry.
func NewForTest() *Metrics {
	return New(prometheus.NewRegistry())
}
