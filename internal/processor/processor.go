package processor

import (
	"context"
	"fmt"
	"time"

	"oee-analyzer-go/internal/actionable"
	"oee-analyzer-go/internal/aggregator"
	"oee-analyzer-go/internal/deadhours"
	"oee-analyzer-go/internal/logger"
	"oee-analyzer-go/internal/types"
)

// Input is one batch of canonical records. Events may be empty.
type Input struct {
	Hourly []types.HourlyRecord
	Events []types.EventRecord
}

// Options tunes an analysis. A nil Clock uses the default shift starts in UTC.
type Options struct {
	Clock *deadhours.ShiftClock
}

// Result is returned by /analyze and feeds the report writer.
type Result struct {
	Plant        types.PlantSummary       `json:"plant"`
	Shifts       []types.ShiftSummary     `json:"shifts"`
	ShiftHours   []types.ShiftHourSummary `json:"shift_hours"`
	DeadHours    []types.DeadHourBlock    `json:"dead_hour_blocks"`
	DeadSummary  types.DeadHourSummary    `json:"dead_hour_summary"`
	FaultSummary []types.FaultSummaryRow  `json:"fault_summary"`
	Pareto       []types.ParetoRow        `json:"downtime_pareto"`
	Actions      []actionable.ActionCard  `json:"actions"`
	DurationMs   int64                    `json:"duration_ms"`
}

// Analyze runs every stage over the input. It only fails when ctx is done.
func Analyze(ctx context.Context, in Input, opts Options) (Result, error) {
	log := logger.New().WithField("component", "processor")
	start := time.Now()
	var res Result

	clock := deadhours.DefaultShiftClock()
	if opts.Clock != nil {
		clock = *opts.Clock
	}

	stages := []struct {
		name string
		run  func()
	}{
		{"summaries", func() {
			res.Plant = aggregator.Plant(in.Hourly)
			res.Shifts = aggregator.ByShift(in.Hourly)
			res.Plant.BenchmarkCPH, res.Plant.CasesLost = aggregator.CasesLost(res.Plant, res.Shifts)
			res.ShiftHours = aggregator.ByShiftHour(in.Hourly)
		}},
		{"dead hours", func() {
			res.DeadHours, res.DeadSummary = deadhours.Build(in.Hourly)
			res.DeadHours = deadhours.Correlate(res.DeadHours, in.Events, in.Hourly, clock)
		}},
		{"downtime", func() {
			res.FaultSummary = aggregator.FaultSummary(in.Events)
			res.Pareto = aggregator.Pareto(in.Events)
		}},
		{"actions", func() {
			res.Actions = actionable.Generate(actionable.Findings{
				Plant:        res.Plant,
				Shifts:       res.Shifts,
				DeadHours:    res.DeadHours,
				DeadSummary:  res.DeadSummary,
				FaultSummary: res.FaultSummary,
				Pareto:       res.Pareto,
			})
		}},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			log.WithError(err).WithField("stage", s.name).Warn("analysis cancelled")
			return Result{}, fmt.Errorf("analyze %s: %w", s.name, err)
		}
		s.run()
	}

	res.DurationMs = time.Since(start).Milliseconds()
	log.WithFields(map[string]interface{}{
		"hourly_rows": len(in.Hourly),
		"events":      len(in.Events),
		"dead_blocks": len(res.DeadHours),
		"oee_pct":     res.Plant.Metrics.OEEPct,
		"duration_ms": res.DurationMs,
	}).Info("analysis complete")
	return res, nil
}
