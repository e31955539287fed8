package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"oee-analyzer-go/internal/processor"
)

// Sheet is one named table of the report workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// Sheet names, in workbook order.
const (
	PlantSheet     = "Plant Summary"
	ShiftSheet     = "Shift Summary"
	ShiftHourSheet = "Shift Hour Summary"
	DeadHourSheet  = "Dead Hour Blocks"
	FaultSheet     = "Fault Summary"
	ParetoSheet    = "Downtime Pareto"
	FocusSheet     = "What to Focus On"
)

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func pct(fraction float64) float64 { return round(fraction*100, 1) }

// Sheets lays an analysis result out as report tables.
func Sheets(res processor.Result) []Sheet {
	p := res.Plant
	plant := Sheet{
		Name:   PlantSheet,
		Header: []string{"Metric", "Value"},
		Rows: [][]interface{}{
			{"Date From", p.DateFrom},
			{"Date To", p.DateTo},
			{"Days", p.Days},
			{"Total Hours", round(p.TotalHours, 1)},
			{"Total Cases", round(p.TotalCases, 0)},
			{"Good Cases", round(p.GoodCases, 0)},
			{"Cases per Hour", round(p.CasesPerHour, 1)},
			{"Benchmark Cases per Hour", round(p.BenchmarkCPH, 1)},
			{"Est. Cases Lost vs Benchmark", round(p.CasesLost, 0)},
			{"Availability %", pct(p.Metrics.Availability)},
			{"Performance %", pct(p.Metrics.Performance)},
			{"Quality %", pct(p.Metrics.Quality)},
			{"OEE %", round(p.Metrics.OEEPct, 1)},
			{"Utilization %", round(p.Utilization.UtilizationPct, 1)},
			{"Dead Hours", p.Utilization.DeadHourCount},
		},
	}

	shifts := Sheet{
		Name: ShiftSheet,
		Header: []string{"Shift", "Total Hours", "Total Cases", "Cases per Hour",
			"Availability %", "Performance %", "Quality %", "OEE %", "Utilization %", "Dead Hours"},
	}
	for _, s := range res.Shifts {
		shifts.Rows = append(shifts.Rows, []interface{}{
			s.Shift, round(s.TotalHours, 1), round(s.TotalCases, 0), round(s.CasesPerHour, 1),
			pct(s.Metrics.Availability), pct(s.Metrics.Performance), pct(s.Metrics.Quality),
			round(s.Metrics.OEEPct, 1), round(s.Utilization.UtilizationPct, 1), s.Utilization.DeadHourCount,
		})
	}

	hours := Sheet{
		Name:   ShiftHourSheet,
		Header: []string{"Shift", "Shift Hour", "Records", "Dead Hours", "Total Cases", "OEE %"},
	}
	for _, h := range res.ShiftHours {
		hours.Rows = append(hours.Rows, []interface{}{
			h.Shift, h.ShiftHour, h.Records, h.DeadHours, round(h.TotalCases, 0), round(h.Metrics.OEEPct, 1),
		})
	}

	dead := Sheet{
		Name:   DeadHourSheet,
		Header: []string{"Date", "Shift", "First Hour", "Last Hour", "Hours", "Pattern", "Product", "Causes"},
	}
	for _, b := range res.DeadHours {
		dead.Rows = append(dead.Rows, []interface{}{
			b.DateStr, b.Shift, b.FirstHour, b.LastHour, b.NHours, b.Pattern, b.Product, b.Causes,
		})
	}

	faults := Sheet{
		Name:   FaultSheet,
		Header: []string{"Fault Category", "Total Minutes", "Total Hours", "Events", "% of All Downtime", "Who Owns This"},
	}
	for _, f := range res.FaultSummary {
		faults.Rows = append(faults.Rows, []interface{}{
			f.Category, round(f.Minutes, 0), round(f.Hours, 1), f.Events, round(f.SharePct, 1), f.Owner,
		})
	}

	pareto := Sheet{
		Name:   ParetoSheet,
		Header: []string{"Cause", "Fault Type", "Total Minutes", "Events", "% of Total", "Cumulative %"},
	}
	for _, r := range res.Pareto {
		pareto.Rows = append(pareto.Rows, []interface{}{
			r.Cause, r.FaultType, round(r.Minutes, 0), r.Events, round(r.SharePct, 1), round(r.CumulativePct, 1),
		})
	}

	focus := Sheet{
		Name:   FocusSheet,
		Header: []string{"Priority", "Insight", "Action", "Impact"},
	}
	for _, a := range res.Actions {
		focus.Rows = append(focus.Rows, []interface{}{a.Priority, a.Insight, a.Action, a.Impact})
	}

	return []Sheet{plant, shifts, hours, dead, faults, pareto, focus}
}

// Write renders sheets into one xlsx workbook with a bold header row.
func Write(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("write report: no sheets")
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("rename sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("new sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	header := make([]interface{}, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return fmt.Errorf("write %q header: %w", s.Name, err)
	}
	if len(s.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(s.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style %q header: %w", s.Name, err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(s.Header))
		if err := f.SetColWidth(s.Name, "A", lastCol, 18); err != nil {
			return fmt.Errorf("size %q columns: %w", s.Name, err)
		}
	}
	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(s.Name, cell, &r); err != nil {
			return fmt.Errorf("write %q row %d: %w", s.Name, i+2, err)
		}
	}
	return nil
}
