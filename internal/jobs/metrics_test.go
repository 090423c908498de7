package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	next:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue next
				}
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue()
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("import:transactions").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("import:transactions").End(boom), boom)

	require.Equal(t, 1.0, counterValue(t, reg, "djr_jobs_total", map[string]string{"job": "import:transactions", "status": "success"}))
	require.Equal(t, 1.0, counterValue(t, reg, "djr_jobs_total", map[string]string{"job": "import:transactions", "status": "failure"}))
	require.Equal(t, 1.0, counterValue(t, reg, "djr_jobs_failures_total", map[string]string{"job": "import:transactions"}))
}

func TestNilMetricsTrackerIsNoop(t *testing.T) {
	var m *Metrics
	require.NoError(t, m.Track("x").End(nil))
}

func TestTrackerCountsRowsAndInFlight(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	tr := m.Track("import:transactions")
	require.Equal(t, 1.0, counterValue(t, reg, "djr_jobs_in_flight", map[string]string{"job": "import:transactions"}))
	tr.Rows("success", 40)
	tr.Rows("error", 2)
	tr.Rows("skipped", 0)
	require.NoError(t, tr.End(nil))

	require.Equal(t, 0.0, counterValue(t, reg, "djr_jobs_in_flight", map[string]string{"job": "import:transactions"}))
	require.Equal(t, 40.0, counterValue(t, reg, "djr_job_rows_total", map[string]string{"job": "import:transactions", "outcome": "success"}))
	require.Equal(t, 2.0, counterValue(t, reg, "djr_job_rows_total", map[string]string{"job": "import:transactions", "outcome": "error"}))
	require.Equal(t, 0.0, counterValue(t, reg, "djr_job_rows_total", map[string]string{"job": "import:transactions", "outcome": "skipped"}))
}
