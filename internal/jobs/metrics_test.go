package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.NoError(t, m.Track("dashboard:refresh").End(nil))
	boom := errors.New("boom")
	assert.Same(t, boom, m.Track("dashboard:refresh").End(boom))
	m.AddProcessed("idempotency:cleanup", 7)
	m.AddProcessed("idempotency:cleanup", 0)

	assert.Equal(t, 1.0, counterValue(t, reg, "accounts_jobs_total", map[string]string{"job": "dashboard:refresh", "status": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "accounts_jobs_total", map[string]string{"job": "dashboard:refresh", "status": "failure"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "accounts_jobs_failures_total", map[string]string{"job": "dashboard:refresh"}))
	assert.Equal(t, 7.0, counterValue(t, reg, "accounts_job_items_processed_total", map[string]string{"job": "idempotency:cleanup"}))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NoError(t, m.Track("hsn:warm").End(nil))
	m.AddProcessed("hsn:warm", 3)
}
