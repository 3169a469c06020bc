package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun("success", 2*time.Second)
	m.ObserveRun("success", time.Second)
	m.ObserveRun("failed", time.Second)
	m.AddItems("created", 3)
	m.AddItems("deleted", 0)
	m.SetMaintenance(true)
	m.AddProductRows("failed", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.syncRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncRuns.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.syncItems.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.maintenanceActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.productRows.WithLabelValues("failed")))

	m.SetMaintenance(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.maintenanceActive))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("success", time.Second)
		m.AddItems("created", 1)
		m.SetMaintenance(true)
		m.AddProductRows("created", 1)
	})
}
