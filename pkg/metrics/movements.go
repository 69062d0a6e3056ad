package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MovementMetrics records outcomes of stock movement operations.
type MovementMetrics struct {
	duration          *prometheus.HistogramVec
	applied           *prometheus.CounterVec
	rejected          *prometheus.CounterVec
	insufficientStock prometheus.Counter
	compensated       prometheus.Counter
	inconsistencies   prometheus.Counter
}

// NewMovementMetrics registers the movement metrics on the provided registerer.
func NewMovementMetrics(reg prometheus.Registerer) *MovementMetrics {
	if reg == nil {
		return &MovementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "movement_duration_seconds",
		Help:    "Duration of stock movement operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "movement_applied_total",
		Help: "Stock movements that committed.",
	}, []string{"kind"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "movement_rejected_total",
		Help: "Stock movements rejected before any state change.",
	}, []string{"kind", "reason"})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "movement_insufficient_stock_total",
		Help: "Movements rejected because the source balance was too low.",
	})
	compensated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "movement_compensated_total",
		Help: "Movements undone after a later step failed.",
	})
	inconsistencies := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "movement_inconsistent_total",
		Help: "Movements left inconsistent after a failed compensation.",
	})
	reg.MustRegister(duration, applied, rejected, insufficientStock, compensated, inconsistencies)
	return &MovementMetrics{
		duration:          duration,
		applied:           applied,
		rejected:          rejected,
		insufficientStock: insufficientStock,
		compensated:       compensated,
		inconsistencies:   inconsistencies,
	}
}

// ObserveDuration records how long a movement of the given kind took.
func (m *MovementMetrics) ObserveDuration(kind string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncApplied increments the committed counter for the given kind.
func (m *MovementMetrics) IncApplied(kind string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncRejected increments the rejection counter for the given kind and reason.
func (m *MovementMetrics) IncRejected(kind, reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(kind), normalizeLabel(reason)).Inc()
}

// IncInsufficientStock counts a balance-guard rejection.
func (m *MovementMetrics) IncInsufficientStock() {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.Inc()
}

// IncCompensated counts a movement that was undone after a later step failed.
func (m *MovementMetrics) IncCompensated() {
	if m == nil || m.compensated == nil {
		return
	}
	m.compensated.Inc()
}

// IncInconsistent counts a movement whose compensation also failed.
func (m *MovementMetrics) IncInconsistent() {
	if m == nil || m.inconsistencies == nil {
		return
	}
	m.inconsistencies.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
