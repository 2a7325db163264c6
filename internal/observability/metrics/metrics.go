package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Module provides the application metrics instruments.
var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)

// Metrics exposes application-level instruments.
type Metrics struct {
	stockMovements     *prometheus.CounterVec
	movementRejections *prometheus.CounterVec
	reconciliationRuns *prometheus.CounterVec
	alertsRaised       *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		stockMovements: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lotline_stock_movements_total",
			Help: "Ledger movements committed, by transaction type.",
		}, []string{"type"}),
		movementRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lotline_stock_movement_rejections_total",
			Help: "Movements rejected by validation, by reason.",
		}, []string{"reason"}),
		reconciliationRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lotline_reconciliation_runs_total",
			Help: "Reconciliation runs finished, by terminal status.",
		}, []string{"status"}),
		alertsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lotline_alerts_raised_total",
			Help: "Alerts persisted, by severity.",
		}, []string{"severity"}),
	}
}

func (m *Metrics) RecordMovement(movementType string) {
	if m == nil {
		return
	}
	m.stockMovements.WithLabelValues(movementType).Inc()
}

func (m *Metrics) RecordMovementRejection(reason string) {
	if m == nil {
		return
	}
	m.movementRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordReconciliationRun(status string) {
	if m == nil {
		return
	}
	m.reconciliationRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordAlert(severity string) {
	if m == nil {
		return
	}
	m.alertsRaised.WithLabelValues(severity).Inc()
}
