package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oee-analyzer-go/internal/deadhours"
	"oee-analyzer-go/internal/types"
)

func hour(shift string, h int, cases float64) types.HourlyRecord {
	r := types.HourlyRecord{
		DateStr:    "2026-02-06",
		Shift:      shift,
		ShiftHour:  h,
		TotalHours: 1,
		TotalCases: cases,
		GoodCases:  cases,
	}
	if cases > 0 {
		r.Availability, r.Performance, r.Quality = 0.9, 0.8, 1
	}
	return r
}

func sample() Input {
	return Input{
		Hourly: []types.HourlyRecord{
			hour("1st Shift", 1, 100),
			hour("1st Shift", 2, 0),
			hour("1st Shift", 3, 0),
			hour("1st Shift", 4, 100),
			hour("2nd Shift", 1, 50),
		},
		Events: []types.EventRecord{{
			Reason:    "Caser-Riverwood",
			StartTime: time.Date(2026, 2, 6, 8, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC),
		}},
	}
}

func TestAnalyze(t *testing.T) {
	res, err := Analyze(context.Background(), sample(), Options{})
	require.NoError(t, err)

	assert.InDelta(t, 72.0, res.Plant.Metrics.OEEPct, 1e-9)
	assert.Equal(t, 2, res.Plant.Utilization.DeadHourCount)
	assert.Equal(t, 1, res.Plant.Days)
	assert.InDelta(t, 50.0, res.Plant.BenchmarkCPH, 1e-9)
	assert.InDelta(t, 0.0, res.Plant.CasesLost, 1e-9)
	require.Len(t, res.Shifts, 2)
	assert.Equal(t, "1st Shift", res.Shifts[0].Shift)
	assert.Len(t, res.ShiftHours, 5)

	require.Len(t, res.DeadHours, 1)
	b := res.DeadHours[0]
	assert.Equal(t, 2, b.FirstHour)
	assert.Equal(t, 3, b.LastHour)
	assert.Equal(t, types.PatternConsecutive, b.Pattern)
	assert.Equal(t, "Caser-Riverwood", b.Causes)
	assert.Equal(t, 1, res.DeadSummary.NBlocks)

	require.Len(t, res.FaultSummary, 1)
	assert.Equal(t, 120.0, res.FaultSummary[0].Minutes)
	require.Len(t, res.Pareto, 1)
	assert.Equal(t, 100.0, res.Pareto[0].CumulativePct)

	require.NotEmpty(t, res.Actions)
	assert.Equal(t, 1, res.Actions[0].Priority)
	assert.Contains(t, res.Actions[0].Action, "Caser-Riverwood")
}

func TestAnalyzeCustomClock(t *testing.T) {
	clock := deadhours.NewShiftClock(map[string]deadhours.ShiftStart{
		"1st": {TimeOfDay: 6 * time.Hour},
	}, time.UTC)
	res, err := Analyze(context.Background(), sample(), Options{Clock: &clock})
	require.NoError(t, err)
	require.Len(t, res.DeadHours, 1)
	// Block now spans 07:00-09:00, an hour of which overlaps the event.
	assert.Equal(t, "Caser-Riverwood (60 min)", res.DeadHours[0].Causes)
}

func TestAnalyzeEmpty(t *testing.T) {
	res, err := Analyze(context.Background(), Input{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, types.WeightedMetrics{}, res.Plant.Metrics)
	assert.NotNil(t, res.DeadHours)
	assert.Empty(t, res.DeadHours)
	assert.Empty(t, res.FaultSummary)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, "No strong loss pattern detected", res.Actions[0].Insight)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, sample(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
