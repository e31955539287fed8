package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oee-analyzer-go/internal/processor"
	"oee-analyzer-go/internal/types"
)

func result() processor.Result {
	res := processor.Result{
		Plant: types.PlantSummary{
			DateFrom: "2026-02-06", DateTo: "2026-02-08", Days: 3,
			TotalHours: 24, TotalCases: 1234.4, CasesPerHour: 51.4333, CasesLost: 215.6,
			Metrics: types.WeightedMetrics{Availability: 0.8123, Performance: 0.9, Quality: 0.99, OEEPct: 72.3761},
		},
		Shifts: []types.ShiftSummary{
			{Shift: "1st Shift", CasesPerHour: 60.4, TotalCases: 700, Metrics: types.WeightedMetrics{Availability: 0.9, Performance: 0.7, Quality: 1, OEEPct: 63}},
			{Shift: "3rd Shift"},
		},
	}
	for i := 0; i < 7; i++ {
		res.Pareto = append(res.Pareto, types.ParetoRow{Cause: string(rune('A' + i)), Minutes: 10.6, SharePct: 14.2857})
	}
	return res
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2026, 2, 9, 6, 0, 0, 0, time.FixedZone("EST", -5*3600))
	rec := NewRecord(result(), now)

	_, err := uuid.Parse(rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, now.UTC(), rec.RunAt)
	assert.Equal(t, 72.4, rec.OEEPct)
	assert.Equal(t, 81.2, rec.AvailabilityPct)
	assert.Equal(t, 99.0, rec.QualityPct)
	assert.Equal(t, 51.4, rec.CasesPerHour)
	assert.Equal(t, 1234.0, rec.TotalCases)
	assert.Equal(t, 216.0, rec.CasesLost)

	require.Len(t, rec.Shifts, 2)
	assert.Equal(t, "Performance", rec.Shifts[0].PrimaryLoss)
	assert.Equal(t, 60.0, rec.Shifts[0].CasesPerHour)
	assert.Equal(t, "", rec.Shifts[1].PrimaryLoss, "idle shift has no loss driver")

	require.Len(t, rec.TopCauses, TopCauses)
	assert.Equal(t, 11.0, rec.TopCauses[0].Minutes)
	assert.Equal(t, 14.3, rec.TopCauses[0].PctOfTotal)
}

func TestPrimaryLoss(t *testing.T) {
	assert.Equal(t, "Availability", PrimaryLoss(types.WeightedMetrics{Availability: 0.5, Performance: 0.5, Quality: 0.5}))
	assert.Equal(t, "Quality", PrimaryLoss(types.WeightedMetrics{Availability: 0.9, Performance: 0.8, Quality: 0.7}))
	assert.Equal(t, "", PrimaryLoss(types.WeightedMetrics{}))
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.jsonl")
	store := NewStore(path)

	recs, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, recs, "missing file is empty history")

	first := NewRecord(result(), time.Now())
	second := NewRecord(processor.Result{}, time.Now())
	require.NoError(t, store.Append(context.Background(), first))
	require.NoError(t, store.Append(context.Background(), second))

	recs, err = store.Load()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, first.RunID, recs[0].RunID)
	assert.Equal(t, first.Shifts, recs[0].Shifts)
	assert.Equal(t, second.RunID, recs[1].RunID)
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("\n{\"run_id\":\"a\"}\n   \n{\"run_id\":\"b\"}\n"), 0o644))

	recs, err := NewStore(path).Load()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[1].RunID)
}

func TestLoadRejectsCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"run_id\":\"a\"}\nnot json\n"), 0o644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history line 2")
}

func TestAppendCancelled(t *testing.T) {
	dir := t.TempDir()
	// A directory at the file path makes every open fail.
	path := filepath.Join(dir, "history.jsonl")
	require.NoError(t, os.Mkdir(path, 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewStore(path).Append(ctx, Record{RunID: "x"})
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	assert.Nil(t, Summarize(nil))

	runs := func(oee ...float64) []Record {
		var out []Record
		for _, v := range oee {
			out = append(out, Record{OEEPct: v, Days: 7})
		}
		return out
	}

	ov := Summarize(runs(60.2, 55, 63.4))
	require.NotNil(t, ov)
	assert.Equal(t, 3, ov.Runs)
	assert.Equal(t, 21, ov.TotalDays)
	assert.Equal(t, 60.2, ov.FirstOEEPct)
	assert.Equal(t, 63.4, ov.LatestOEEPct)
	assert.Equal(t, 3.2, ov.OEEDeltaPts)
	assert.Equal(t, TrendImproving, ov.Trend)

	assert.Equal(t, TrendDeclining, Summarize(runs(70, 68.9)).Trend)
	assert.Equal(t, TrendFlat, Summarize(runs(70, 71)).Trend, "a one point move stays flat")
	assert.Equal(t, TrendFlat, Summarize(runs(70, 69)).Trend)

	single := Summarize(runs(64))
	assert.Equal(t, 1, single.Runs)
	assert.Equal(t, 0.0, single.OEEDeltaPts)
	assert.Equal(t, TrendFlat, single.Trend)
}
