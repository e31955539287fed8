package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oee-analyzer-go/internal/classifier"
	"oee-analyzer-go/internal/types"
)

func ev(reason string, minutes float64) types.EventRecord {
	return types.EventRecord{Reason: reason, DurationMinutes: minutes}
}

func TestFaultSummary(t *testing.T) {
	rows := FaultSummary([]types.EventRecord{
		ev("Caser - Riverwood", 60),
		ev("Unassigned", 30),
		ev("Palletizer fault", 30),
		ev("Short Stop", 5),
		ev("Lunch", 25),
	})
	require.Len(t, rows, 4)
	assert.Equal(t, string(classifier.Equipment), rows[0].Category)
	assert.Equal(t, 90.0, rows[0].Minutes)
	assert.Equal(t, 1.5, rows[0].Hours)
	assert.Equal(t, 2, rows[0].Events)
	assert.InDelta(t, 60.0, rows[0].SharePct, 1e-9)
	assert.Equal(t, "Maintenance", rows[0].Owner)

	assert.Equal(t, string(classifier.DataGap), rows[1].Category)
	assert.Equal(t, string(classifier.Scheduled), rows[2].Category)
	assert.Equal(t, string(classifier.MicroStop), rows[3].Category)
}

func TestFaultSummaryBlankReasonIsDataGap(t *testing.T) {
	events := []types.EventRecord{ev("", 60), ev("Caser - Riverwood", 30)}
	rows := FaultSummary(events)
	require.Len(t, rows, 2)
	assert.Equal(t, string(classifier.DataGap), rows[0].Category)
	assert.Equal(t, 60.0, rows[0].Minutes)
	assert.Equal(t, "Shift supervisors (reason coding)", rows[0].Owner)

	pareto := Pareto(events)
	require.Len(t, pareto, 2)
	assert.Equal(t, classifier.Unassigned, pareto[0].Cause)
	assert.Equal(t, rows[0].Category, pareto[0].FaultType)
}

func TestFaultSummaryMinutesFromTimestamps(t *testing.T) {
	start := time.Date(2026, 2, 6, 8, 0, 0, 0, time.UTC)
	rows := FaultSummary([]types.EventRecord{{Reason: "Changeover", StartTime: start, EndTime: start.Add(45 * time.Minute)}})
	require.Len(t, rows, 1)
	assert.Equal(t, 45.0, rows[0].Minutes)
	assert.Equal(t, 100.0, rows[0].SharePct)
}

func TestFaultSummaryEmpty(t *testing.T) {
	assert.Empty(t, FaultSummary(nil))
}

func TestPareto(t *testing.T) {
	rows := Pareto([]types.EventRecord{
		ev("Short Stop", 10),
		ev("Caser - Riverwood", 50),
		ev("Short Stop", 10),
		ev("Changeover", 20),
		ev("  ", 10),
	})
	require.Len(t, rows, 4)
	assert.Equal(t, "Caser - Riverwood", rows[0].Cause)
	assert.Equal(t, string(classifier.Equipment), rows[0].FaultType)
	assert.InDelta(t, 50.0, rows[0].SharePct, 1e-9)

	assert.Equal(t, "Short Stop", rows[1].Cause)
	assert.Equal(t, 2, rows[1].Events)
	assert.Equal(t, "Changeover", rows[2].Cause, "ties keep first appearance")
	assert.Equal(t, "Unassigned", rows[3].Cause)
	assert.Equal(t, string(classifier.DataGap), rows[3].FaultType)
	assert.InDelta(t, 100.0, rows[3].CumulativePct, 1e-9)
}
