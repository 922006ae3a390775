package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks line-item writes and aggregate recomputation.
type LedgerMetrics struct {
	writes    *prometheus.CounterVec
	recompute *prometheus.HistogramVec
	drift     *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "avoledger_line_item_writes_total",
		Help: "Order and sale writes by entity, operation and outcome.",
	}, []string{"entity", "op", "outcome"})
	recompute := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "avoledger_aggregate_recompute_seconds",
		Help:    "Time spent recomputing an owner aggregate from its line items.",
		Buckets: prometheus.DefBuckets,
	}, []string{"owner_kind"})
	drift := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "avoledger_aggregate_drift_total",
		Help: "Stored aggregates that disagreed with their line items when recomputed.",
	}, []string{"owner_kind"})
	reg.MustRegister(writes, recompute, drift)
	return &LedgerMetrics{
		writes:    writes,
		recompute: recompute,
		drift:     drift,
	}
}

func (m *LedgerMetrics) IncWrite(entity, op string, err error) {
	if m == nil || m.writes == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.writes.WithLabelValues(normalizeLabel(entity), normalizeLabel(op), outcome).Inc()
}

func (m *LedgerMetrics) ObserveRecompute(ownerKind string, duration time.Duration) {
	if m == nil || m.recompute == nil {
		return
	}
	m.recompute.WithLabelValues(normalizeLabel(ownerKind)).Observe(duration.Seconds())
}

func (m *LedgerMetrics) IncDrift(ownerKind string) {
	if m == nil || m.drift == nil {
		return
	}
	m.drift.WithLabelValues(normalizeLabel(ownerKind)).Inc()
}
