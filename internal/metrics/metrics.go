package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for sync runs and product imports. A nil *Metrics is a no-op.
type Metrics struct {
	syncRuns          *prometheus.CounterVec
	syncItems         *prometheus.CounterVec
	syncDuration      *prometheus.HistogramVec
	maintenanceActive prometheus.Gauge
	productRows       *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		syncRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "extmedia",
				Subsystem: "sync",
				Name:      "runs_total",
				Help:      "Media sync runs by final status.",
			},
			[]string{"status"},
		),
		syncItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "extmedia",
				Subsystem: "sync",
				Name:      "items_total",
				Help:      "Media sync outcomes per external id.",
			},
			[]string{"outcome"},
		),
		syncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "extmedia",
				Subsystem: "sync",
				Name:      "duration_seconds",
				Help:      "Wall time of media sync runs.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
			},
			[]string{"status"},
		),
		maintenanceActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "extmedia",
				Name:      "maintenance_active",
				Help:      "1 while an import holds the maintenance marker.",
			},
		),
		productRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "extmedia",
				Subsystem: "products",
				Name:      "rows_total",
				Help:      "Product CSV import rows by outcome.",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.syncRuns, m.syncItems, m.syncDuration, m.maintenanceActive, m.productRows)
	return m
}

// ObserveRun records one finished sync run.
func (m *Metrics) ObserveRun(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(status).Inc()
	m.syncDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// AddItems counts n ids with the given outcome (created, updated, deleted, unchanged).
func (m *Metrics) AddItems(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.syncItems.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) SetMaintenance(active bool) {
	if m == nil {
		return
	}
	if active {
		m.maintenanceActive.Set(1)
		return
	}
	m.maintenanceActive.Set(0)
}

// AddProductRows counts n product rows with the given outcome.
func (m *Metrics) AddProductRows(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.productRows.WithLabelValues(outcome).Add(float64(n))
}
