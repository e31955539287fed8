package metrics

import (
	"bytes"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oee-analyzer-go/internal/processor"
	"oee-analyzer-go/internal/types"
)

func parse(t *testing.T, r *Registry) map[string]*dto.MetricFamily {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(&buf)
	require.NoError(t, err)
	return mfs
}

func TestRequestsOnly(t *testing.T) {
	r := NewRegistry()
	r.ObserveRequest("ok")
	r.ObserveRequest("ok")
	r.ObserveRequest("schema_mismatch")

	mfs := parse(t, r)
	require.Contains(t, mfs, RequestsTotal)
	assert.NotContains(t, mfs, LastOEE)

	byStatus := map[string]float64{}
	for _, m := range mfs[RequestsTotal].GetMetric() {
		byStatus[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"ok": 2, "schema_mismatch": 1}, byStatus)
}

func TestObserveRun(t *testing.T) {
	r := NewRegistry()
	r.ObserveRun(processor.Result{
		Plant: types.PlantSummary{
			Metrics:     types.WeightedMetrics{Availability: 0.9, Performance: 0.8, Quality: 1, OEEPct: 72},
			Utilization: types.UtilizationResult{UtilizationPct: 60, DeadHourCount: 2},
		},
		Shifts:       []types.ShiftSummary{{Shift: "1st Shift", Metrics: types.WeightedMetrics{OEEPct: 72}}},
		FaultSummary: []types.FaultSummaryRow{{Category: "Equipment / Mechanical", Minutes: 120}},
	})

	mfs := parse(t, r)
	assert.Equal(t, 72.0, mfs[LastOEE].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 0.9, mfs[LastAvailability].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 2.0, mfs[LastDeadHours].GetMetric()[0].GetGauge().GetValue())

	shift := mfs[LastShiftOEE].GetMetric()[0]
	assert.Equal(t, "1st Shift", shift.GetLabel()[0].GetValue())

	dt := mfs[LastDowntimeByCat].GetMetric()[0]
	assert.Equal(t, "Equipment / Mechanical", dt.GetLabel()[0].GetValue())
	assert.Equal(t, 120.0, dt.GetGauge().GetValue())
}

func TestContentType(t *testing.T) {
	assert.Contains(t, ContentType, "text/plain")
}

func TestEmptyRegistry(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRegistry().WriteText(&buf))
	assert.Empty(t, buf.String())
}
