package dataset

import (
	"fmt"
	"io"
	"time"

	"oee-analyzer-go/internal/logger"
	"oee-analyzer-go/internal/schema"
	"oee-analyzer-go/internal/types"
)

// LoadHourly reads the DayShiftHour sheet of an OEE workbook into canonical
// hourly records. A missing sheet or column is a *schema.MismatchError.
func LoadHourly(r io.Reader) ([]types.HourlyRecord, error) {
	log := logger.New().WithField("component", "dataset.loader").WithField("sheet", schema.DayShiftHour.Name)
	t, err := readNormalized(r, schema.DayShiftHour, false)
	if err != nil {
		log.WithError(err).Warn("hourly sheet rejected")
		return nil, fmt.Errorf("load hourly: %w", err)
	}
	out := HourlyFromTable(t)
	log.WithField("rows", len(t.Rows)).WithField("records", len(out)).Info("hourly records loaded")
	return out, nil
}

// HourlyFromTable converts a normalized hourly table. Malformed numbers
// read as 0 and out-of-range fractions as 0; rows without a date and shift
// are skipped.
func HourlyFromTable(t schema.Table) []types.HourlyRecord {
	hasGood := t.Has(schema.ColGoodCases)
	hasBad := t.Has(schema.ColBadCases)
	out := make([]types.HourlyRecord, 0, len(t.Rows))
	for i := range t.Rows {
		rec := types.HourlyRecord{
			DateStr:      dateString(t.Value(i, schema.ColShiftDate)),
			Shift:        t.Value(i, schema.ColShift),
			ShiftHour:    integer(t.Value(i, schema.ColShiftHour)),
			TotalHours:   count(t.Value(i, schema.ColTotalHours)),
			TotalCases:   count(t.Value(i, schema.ColTotalCases)),
			Availability: fraction(t.Value(i, schema.ColAvailability)),
			Performance:  fraction(t.Value(i, schema.ColPerformance)),
			ProductCode:  t.Value(i, schema.ColProductCode),
			Job:          t.Value(i, schema.ColJob),
		}
		if rec.DateStr == "" && rec.Shift == "" {
			continue
		}
		good, bad := t.Value(i, schema.ColGoodCases), t.Value(i, schema.ColBadCases)
		switch {
		case hasGood && good != "":
			rec.GoodCases = count(good)
		case hasBad && bad != "":
			rec.GoodCases = rec.TotalCases - count(bad)
		default:
			rec.GoodCases = rec.TotalCases
		}
		if rec.GoodCases > rec.TotalCases {
			rec.GoodCases = rec.TotalCases
		}
		if rec.GoodCases < 0 {
			rec.GoodCases = 0
		}
		if hasBad && bad != "" {
			rec.BadCases = count(bad)
		} else {
			rec.BadCases = rec.TotalCases - rec.GoodCases
		}
		if q := t.Value(i, schema.ColQuality); q != "" {
			rec.Quality = fraction(q)
		} else if rec.TotalCases > 0 {
			rec.Quality = rec.GoodCases / rec.TotalCases
		}
		out = append(out, rec)
	}
	return out
}

// LoadEvents reads a downtime event log. Wall-clock cells are interpreted
// in loc. A workbook with a single sheet is used whatever the sheet is
// called.
func LoadEvents(r io.Reader, loc *time.Location) ([]types.EventRecord, error) {
	log := logger.New().WithField("component", "dataset.loader").WithField("sheet", schema.Events.Name)
	t, err := readNormalized(r, schema.Events, true)
	if err != nil {
		log.WithError(err).Warn("event sheet rejected")
		return nil, fmt.Errorf("load events: %w", err)
	}
	out := EventsFromTable(t, loc)
	if dropped := len(t.Rows) - len(out); dropped > 0 {
		log.WithField("dropped", dropped).Warn("events without a readable start time skipped")
	}
	log.WithField("events", len(out)).Info("events loaded")
	return out, nil
}

// EventsFromTable converts a normalized event table. Events need a readable
// start; a missing end is start+duration and a missing duration is end-start.
func EventsFromTable(t schema.Table, loc *time.Location) []types.EventRecord {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]types.EventRecord, 0, len(t.Rows))
	for i := range t.Rows {
		e := types.EventRecord{
			Reason:          t.Value(i, schema.ColReason),
			StartTime:       timestamp(t.Value(i, schema.ColStartTime), loc),
			EndTime:         timestamp(t.Value(i, schema.ColEndTime), loc),
			Shift:           t.Value(i, schema.ColShift),
			OEEType:         t.Value(i, schema.ColOEEType),
			DurationMinutes: count(t.Value(i, schema.ColDurationMinutes)),
		}
		if e.StartTime.IsZero() {
			continue
		}
		if e.EndTime.IsZero() && e.DurationMinutes > 0 {
			e.EndTime = e.StartTime.Add(time.Duration(e.DurationMinutes * float64(time.Minute)))
		}
		if e.DurationMinutes == 0 && e.EndTime.After(e.StartTime) {
			e.DurationMinutes = e.EndTime.Sub(e.StartTime).Minutes()
		}
		out = append(out, e)
	}
	return out
}
