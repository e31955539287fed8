package actionable

import (
	"fmt"
	"sort"

	"oee-analyzer-go/internal/classifier"
	"oee-analyzer-go/internal/types"
)

type ActionCard struct {
	Priority int    `json:"priority"`
	Insight  string `json:"insight"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

// Findings is the slice of an analysis the cards are derived from.
type Findings struct {
	Plant        types.PlantSummary
	Shifts       []types.ShiftSummary
	DeadHours    []types.DeadHourBlock
	DeadSummary  types.DeadHourSummary
	FaultSummary []types.FaultSummaryRow
	Pareto       []types.ParetoRow
}

// Thresholds that promote a finding to a card.
const (
	TopFaultSharePct   = 30.0
	DataGapSharePct    = 10.0
	ShiftGapPoints     = 10.0
	LowUtilizationPct  = 70.0
	minOutageBlockHour = 2
)

// Generate returns focus cards ordered by priority, 1 being the most urgent.
func Generate(f Findings) []ActionCard {
	var cards []ActionCard
	add := func(c ActionCard) {
		c.Priority = len(cards) + 1
		cards = append(cards, c)
	}

	if c, ok := outageCard(f); ok {
		add(c)
	}
	if c, ok := topFaultCard(f); ok {
		add(c)
	}
	if c, ok := dataGapCard(f); ok {
		add(c)
	}
	if c, ok := shiftGapCard(f); ok {
		add(c)
	}
	if c, ok := utilizationCard(f); ok {
		add(c)
	}

	if len(cards) == 0 {
		add(ActionCard{
			Insight: "No strong loss pattern detected",
			Action:  "Keep monitoring and improve downtime reason coding",
			Impact:  "Low immediate intervention",
		})
	}
	return cards
}

func outageCard(f Findings) (ActionCard, bool) {
	if f.DeadSummary.ConsecutiveHours == 0 {
		return ActionCard{}, false
	}
	var worst *types.DeadHourBlock
	for i := range f.DeadHours {
		b := &f.DeadHours[i]
		if b.Pattern != types.PatternConsecutive || b.NHours < minOutageBlockHour {
			continue
		}
		if worst == nil || b.NHours > worst.NHours {
			worst = b
		}
	}
	if worst == nil {
		return ActionCard{}, false
	}
	cause := worst.Causes
	if cause == "" {
		cause = "no downtime event recorded"
	}
	return ActionCard{
		Insight: fmt.Sprintf("%d hours lost in %d multi-hour outage blocks; longest is %d hours on %s %s (hours %d-%d)",
			f.DeadSummary.ConsecutiveHours, f.DeadSummary.NBlocks, worst.NHours, worst.DateStr, worst.Shift, worst.FirstHour, worst.LastHour),
		Action: fmt.Sprintf("Review the longest outage with maintenance: %s", cause),
		Impact: fmt.Sprintf("Recover up to %d scheduled hours of capacity", f.DeadSummary.ConsecutiveHours),
	}, true
}

func topFaultCard(f Findings) (ActionCard, bool) {
	for _, row := range f.FaultSummary {
		// Uncoded and planned time are covered by their own cards.
		if row.Category == string(classifier.DataGap) || row.Category == string(classifier.Scheduled) {
			continue
		}
		if row.SharePct < TopFaultSharePct {
			return ActionCard{}, false
		}
		action := fmt.Sprintf("%s to own a reduction plan for %s", row.Owner, row.Category)
		if cause := topCause(f.Pareto, row.Category); cause != "" {
			action = fmt.Sprintf("%s; start with %s", action, cause)
		}
		return ActionCard{
			Insight: fmt.Sprintf("%s is %.0f%% of downtime (%.1f h over %d events)", row.Category, row.SharePct, row.Hours, row.Events),
			Action:  action,
			Impact:  fmt.Sprintf("Up to %.1f h of downtime addressable", row.Hours),
		}, true
	}
	return ActionCard{}, false
}

func topCause(pareto []types.ParetoRow, category string) string {
	for _, p := range pareto {
		if p.FaultType == category {
			return p.Cause
		}
	}
	return ""
}

func dataGapCard(f Findings) (ActionCard, bool) {
	for _, row := range f.FaultSummary {
		if row.Category != string(classifier.DataGap) || row.SharePct < DataGapSharePct {
			continue
		}
		return ActionCard{
			Insight: fmt.Sprintf("%.0f%% of downtime (%.1f h) has no reason coded", row.SharePct, row.Hours),
			Action:  fmt.Sprintf("%s to code every stop before shift handover", row.Owner),
			Impact:  "Makes the downtime pareto trustworthy",
		}, true
	}
	return ActionCard{}, false
}

func shiftGapCard(f Findings) (ActionCard, bool) {
	var active []types.ShiftSummary
	for _, s := range f.Shifts {
		if s.TotalCases > 0 {
			active = append(active, s)
		}
	}
	if len(active) < 2 {
		return ActionCard{}, false
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Metrics.OEEPct > active[j].Metrics.OEEPct })
	best, worst := active[0], active[len(active)-1]
	gap := best.Metrics.OEEPct - worst.Metrics.OEEPct
	if gap < ShiftGapPoints {
		return ActionCard{}, false
	}
	return ActionCard{
		Insight: fmt.Sprintf("%s runs at %.1f%% OEE vs %.1f%% on %s", worst.Shift, worst.Metrics.OEEPct, best.Metrics.OEEPct, best.Shift),
		Action:  fmt.Sprintf("Pair %s leads with %s to transfer start-up and changeover practices", worst.Shift, best.Shift),
		Impact:  fmt.Sprintf("Closing the gap is worth %.1f OEE points on %s", gap, worst.Shift),
	}, true
}

func utilizationCard(f Findings) (ActionCard, bool) {
	u := f.Plant.Utilization
	if u.ScheduledHours <= 0 || u.UtilizationPct >= LowUtilizationPct {
		return ActionCard{}, false
	}
	return ActionCard{
		Insight: fmt.Sprintf("Only %.1f%% of scheduled hours produced cases (%d dead hours)", u.UtilizationPct, u.DeadHourCount),
		Action:  "Check staffing and material readiness at shift start",
		Impact:  fmt.Sprintf("%.1f scheduled hours had no output", u.ScheduledHours-u.ProducingHours),
	}, true
}
