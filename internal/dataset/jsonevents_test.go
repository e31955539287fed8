package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oee-analyzer-go/internal/schema"
)

func TestLoadEventsJSON(t *testing.T) {
	doc := `[
		{"reason": "Caser-Riverwood", "start_time": "2026-02-06T08:05:00", "end_time": "2026-02-06T09:00:00",
		 "shift": "1st Shift", "oee_type": "Availability Loss", "duration_minutes": 55},
		{"Event Reason": "Short Stop", "Start Time": "2026-02-06 10:00", "Duration (min)": 5, "end_time": null},
		{"reason": "No start", "duration_minutes": 10}
	]`
	events, err := LoadEventsJSON(strings.NewReader(doc), time.UTC)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Caser-Riverwood", events[0].Reason)
	assert.Equal(t, time.Date(2026, 2, 6, 8, 5, 0, 0, time.UTC), events[0].StartTime)
	assert.Equal(t, time.Date(2026, 2, 6, 9, 0, 0, 0, time.UTC), events[0].EndTime)
	assert.Equal(t, "Availability Loss", events[0].OEEType)
	assert.Equal(t, 55.0, events[0].DurationMinutes)

	assert.Equal(t, "Short Stop", events[1].Reason)
	assert.Equal(t, time.Date(2026, 2, 6, 10, 5, 0, 0, time.UTC), events[1].EndTime, "end from duration")
}

func TestLoadEventsJSONWrapped(t *testing.T) {
	doc := `{"source": "kb", "events": [{"cause": "Changeover", "start": "2026-02-06T11:00:00Z", "end": "2026-02-06T11:30:00Z"}]}`
	loc := time.FixedZone("EST", -5*3600)
	events, err := LoadEventsJSON(strings.NewReader(doc), loc)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Changeover", events[0].Reason)
	assert.True(t, time.Date(2026, 2, 6, 11, 0, 0, 0, time.UTC).Equal(events[0].StartTime))
	assert.Equal(t, 30.0, events[0].DurationMinutes)
}

func TestLoadEventsJSONFirstKeyWins(t *testing.T) {
	doc := `[{"cause": "Filler - Jam", "reason": "ignored", "start_time": "2026-02-06 08:00"}]`
	events, err := LoadEventsJSON(strings.NewReader(doc), time.UTC)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Filler - Jam", events[0].Reason)
}

func TestLoadEventsJSONErrors(t *testing.T) {
	t.Run("empty array", func(t *testing.T) {
		events, err := LoadEventsJSON(strings.NewReader(" [] "), time.UTC)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
	t.Run("missing start column", func(t *testing.T) {
		_, err := LoadEventsJSON(strings.NewReader(`[{"reason": "Caser"}]`), time.UTC)
		require.Error(t, err)
		assert.True(t, schema.IsMismatch(err))
	})
	t.Run("object without events", func(t *testing.T) {
		_, err := LoadEventsJSON(strings.NewReader(`{"rows": []}`), time.UTC)
		require.Error(t, err)
		assert.False(t, schema.IsMismatch(err))
	})
	t.Run("element is not an object", func(t *testing.T) {
		_, err := LoadEventsJSON(strings.NewReader(`["Caser"]`), time.UTC)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "event 0")
	})
	t.Run("malformed", func(t *testing.T) {
		_, err := LoadEventsJSON(strings.NewReader(`[{"reason":`), time.UTC)
		require.Error(t, err)
	})
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON([]byte("  [ ]")))
	assert.True(t, IsJSON([]byte("\n{\"events\": []}")))
	assert.False(t, IsJSON([]byte("PK\x03\x04")))
	assert.False(t, IsJSON(nil))
}
