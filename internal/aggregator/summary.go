package aggregator

import (
	"sort"

	"oee-analyzer-go/internal/types"
)

// Totals sums hours and cases over every record.
func Totals(records []types.HourlyRecord) (hours, cases, good float64) {
	for _, r := range records {
		hours += r.TotalHours
		cases += r.TotalCases
		good += r.GoodCases
	}
	return hours, cases, good
}

func casesPerHour(cases, hours float64) float64 {
	if hours <= 0 {
		return 0
	}
	return cases / hours
}

// Plant builds the plant-level summary.
func Plant(records []types.HourlyRecord) types.PlantSummary {
	hours, cases, good := Totals(records)
	ps := types.PlantSummary{
		TotalHours:   hours,
		TotalCases:   cases,
		GoodCases:    good,
		CasesPerHour: casesPerHour(cases, hours),
		Metrics:      AggregateOEE(records),
		Utilization:  ComputeUtilization(records),
	}
	days := map[string]bool{}
	for _, r := range records {
		if r.DateStr == "" {
			continue
		}
		if !days[r.DateStr] {
			days[r.DateStr] = true
			if ps.DateFrom == "" || r.DateStr < ps.DateFrom {
				ps.DateFrom = r.DateStr
			}
			if r.DateStr > ps.DateTo {
				ps.DateTo = r.DateStr
			}
		}
	}
	ps.Days = len(days)
	return ps
}

// CasesLost estimates output lost against the best shift's rate. The
// benchmark is the highest per-shift cases per hour; the loss is what every
// scheduled hour would have made at that rate minus actual cases, never
// negative.
func CasesLost(plant types.PlantSummary, shifts []types.ShiftSummary) (benchmark, lost float64) {
	for _, s := range shifts {
		if s.CasesPerHour > benchmark {
			benchmark = s.CasesPerHour
		}
	}
	lost = benchmark*plant.TotalHours - plant.TotalCases
	if lost < 0 {
		lost = 0
	}
	return benchmark, lost
}

// ByShift summarizes each shift, in the order shifts first appear.
func ByShift(records []types.HourlyRecord) []types.ShiftSummary {
	var order []string
	groups := map[string][]types.HourlyRecord{}
	for _, r := range records {
		if _, ok := groups[r.Shift]; !ok {
			order = append(order, r.Shift)
		}
		groups[r.Shift] = append(groups[r.Shift], r)
	}
	out := make([]types.ShiftSummary, 0, len(order))
	for _, shift := range order {
		rows := groups[shift]
		hours, cases, good := Totals(rows)
		out = append(out, types.ShiftSummary{
			Shift:        shift,
			TotalHours:   hours,
			TotalCases:   cases,
			GoodCases:    good,
			CasesPerHour: casesPerHour(cases, hours),
			Metrics:      AggregateOEE(rows),
			Utilization:  ComputeUtilization(rows),
		})
	}
	return out
}

// ByShiftHour summarizes each (shift, shift hour) across all dates. Shifts
// keep first-appearance order, hours ascend within a shift.
func ByShiftHour(records []types.HourlyRecord) []types.ShiftHourSummary {
	type key struct {
		shift string
		hour  int
	}
	shiftRank := map[string]int{}
	groups := map[key][]types.HourlyRecord{}
	var keys []key
	for _, r := range records {
		if _, ok := shiftRank[r.Shift]; !ok {
			shiftRank[r.Shift] = len(shiftRank)
		}
		k := key{r.Shift, r.ShiftHour}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].shift != keys[j].shift {
			return shiftRank[keys[i].shift] < shiftRank[keys[j].shift]
		}
		return keys[i].hour < keys[j].hour
	})
	out := make([]types.ShiftHourSummary, 0, len(keys))
	for _, k := range keys {
		rows := groups[k]
		_, cases, _ := Totals(rows)
		out = append(out, types.ShiftHourSummary{
			Shift:      k.shift,
			ShiftHour:  k.hour,
			Records:    len(rows),
			DeadHours:  ComputeUtilization(rows).DeadHourCount,
			TotalCases: cases,
			Metrics:    AggregateOEE(rows),
		})
	}
	return out
}
