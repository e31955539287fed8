package aggregator

import "oee-analyzer-go/internal/types"

// WeightedMean is Σ(v*w)/Σw over elements with a positive weight. It
// returns 0 when nothing carries weight.
func WeightedMean(values, weights []float64) float64 {
	n := len(values)
	if len(weights) < n {
		n = len(weights)
	}
	sum, total := 0.0, 0.0
	for i := 0; i < n; i++ {
		if weights[i] <= 0 {
			continue
		}
		sum += values[i] * weights[i]
		total += weights[i]
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// producing reports whether a record is a real production interval.
func producing(r types.HourlyRecord) bool {
	return r.TotalCases > 0 && r.TotalHours > 0
}

// AggregateOEE weights availability and performance by scheduled hours and
// quality by case volume, then derives OEE from the three aggregates.
// Records without cases or without hours do not take part.
func AggregateOEE(records []types.HourlyRecord) types.WeightedMetrics {
	var avail, perf, hours []float64
	good, total := 0.0, 0.0
	for _, r := range records {
		if !producing(r) {
			continue
		}
		avail = append(avail, r.Availability)
		perf = append(perf, r.Performance)
		hours = append(hours, r.TotalHours)
		good += r.GoodCases
		total += r.TotalCases
	}
	if len(hours) == 0 {
		return types.WeightedMetrics{}
	}
	m := types.WeightedMetrics{
		Availability: WeightedMean(avail, hours),
		Performance:  WeightedMean(perf, hours),
	}
	if total > 0 {
		m.Quality = good / total
	}
	m.OEEPct = m.Availability * m.Performance * m.Quality * 100
	return m
}

// ComputeUtilization measures how much of the scheduled time produced any
// cases. Records with no scheduled hours are ignored.
func ComputeUtilization(records []types.HourlyRecord) types.UtilizationResult {
	var res types.UtilizationResult
	for _, r := range records {
		if r.TotalHours <= 0 {
			continue
		}
		res.ScheduledHours += r.TotalHours
		if r.TotalCases > 0 {
			res.ProducingHours += r.TotalHours
		} else {
			res.DeadHourCount++
		}
	}
	if res.ScheduledHours > 0 {
		res.UtilizationPct = 100 * res.ProducingHours / res.ScheduledHours
	}
	return res
}
