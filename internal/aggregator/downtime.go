package aggregator

import (
	"sort"

	"oee-analyzer-go/internal/classifier"
	"oee-analyzer-go/internal/types"
)

// FaultSummary totals event minutes per fault category, largest first.
// Categories without events are omitted. Blank reasons count as a data gap.
func FaultSummary(events []types.EventRecord) []types.FaultSummaryRow {
	minutes := map[classifier.FaultCategory]float64{}
	counts := map[classifier.FaultCategory]int{}
	total := 0.0
	for _, e := range events {
		c := classifier.ClassifyFault(classifier.ReasonLabel(e.Reason))
		m := e.Minutes()
		minutes[c] += m
		counts[c]++
		total += m
	}
	var out []types.FaultSummaryRow
	for _, c := range classifier.Categories {
		if counts[c] == 0 {
			continue
		}
		row := types.FaultSummaryRow{
			Category: string(c),
			Minutes:  minutes[c],
			Hours:    minutes[c] / 60,
			Events:   counts[c],
			Owner:    classifier.Owner(c),
		}
		if total > 0 {
			row.SharePct = 100 * minutes[c] / total
		}
		out = append(out, row)
	}
	// Categories is already in report order; the stable sort keeps it for ties.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes > out[j].Minutes })
	return out
}

// Pareto ranks raw downtime reasons by total minutes with running share.
// Ties keep first-appearance order; blank reasons are reported as "Unassigned".
func Pareto(events []types.EventRecord) []types.ParetoRow {
	index := map[string]int{}
	var out []types.ParetoRow
	total := 0.0
	for _, e := range events {
		reason := classifier.ReasonLabel(e.Reason)
		i, ok := index[reason]
		if !ok {
			i = len(out)
			index[reason] = i
			out = append(out, types.ParetoRow{
				Cause:     reason,
				FaultType: string(classifier.ClassifyFault(reason)),
			})
		}
		m := e.Minutes()
		out[i].Minutes += m
		out[i].Events++
		total += m
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes > out[j].Minutes })
	running := 0.0
	for i := range out {
		if total > 0 {
			out[i].SharePct = 100 * out[i].Minutes / total
		}
		running += out[i].SharePct
		out[i].CumulativePct = running
	}
	return out
}
