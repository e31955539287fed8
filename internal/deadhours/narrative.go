package deadhours

import (
	"sort"

	"oee-analyzer-go/internal/types"
)

type groupKey struct {
	date  string
	shift string
}

// Build groups zero-production hours into outage blocks per (date, shift).
// Groups keep the order they first appear in; within a group hours are
// sorted and split wherever they stop being consecutive.
func Build(records []types.HourlyRecord) ([]types.DeadHourBlock, types.DeadHourSummary) {
	var order []groupKey
	groups := map[groupKey][]int{}
	for _, r := range records {
		if r.TotalCases != 0 {
			continue
		}
		k := groupKey{r.DateStr, r.Shift}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r.ShiftHour)
	}

	blocks := []types.DeadHourBlock{}
	for _, k := range order {
		hours := groups[k]
		sort.SliceStable(hours, func(i, j int) bool { return hours[i] < hours[j] })
		start := 0
		for i := 1; i <= len(hours); i++ {
			if i < len(hours) && hours[i] == hours[i-1]+1 {
				continue
			}
			blocks = append(blocks, newBlock(k, hours[start], hours[i-1], i-start))
			start = i
		}
	}
	return blocks, Summarize(blocks)
}

func newBlock(k groupKey, first, last, n int) types.DeadHourBlock {
	pattern := types.PatternScattered
	if n >= 2 {
		pattern = types.PatternConsecutive
	}
	return types.DeadHourBlock{
		DateStr:   k.date,
		Shift:     k.shift,
		FirstHour: first,
		LastHour:  last,
		NHours:    n,
		Pattern:   pattern,
	}
}

// Summarize totals dead hours by pattern. Only consecutive blocks count
// toward NBlocks.
func Summarize(blocks []types.DeadHourBlock) types.DeadHourSummary {
	var s types.DeadHourSummary
	for _, b := range blocks {
		s.TotalDead += b.NHours
		if b.Pattern == types.PatternConsecutive {
			s.ConsecutiveHours += b.NHours
			s.NBlocks++
		} else {
			s.ScatteredHours += b.NHours
		}
	}
	return s
}
