package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oee-analyzer-go/internal/logger"
	"oee-analyzer-go/internal/processor"
	"oee-analyzer-go/internal/types"
)

// TopCauses is how many pareto causes a record keeps.
const TopCauses = 5

// ShiftTrend is one shift's headline numbers for a run.
type ShiftTrend struct {
	Shift        string  `json:"shift"`
	OEEPct       float64 `json:"oee_pct"`
	CasesPerHour float64 `json:"cases_per_hour"`
	TotalCases   float64 `json:"total_cases"`
	PrimaryLoss  string  `json:"primary_loss"`
}

// CauseTrend is one pareto cause for a run.
type CauseTrend struct {
	Cause      string  `json:"cause"`
	Minutes    float64 `json:"minutes"`
	PctOfTotal float64 `json:"pct_of_total"`
}

// Record is one line of the history file.
type Record struct {
	RunID           string       `json:"run_id"`
	RunAt           time.Time    `json:"run_at"`
	DateFrom        string       `json:"date_from"`
	DateTo          string       `json:"date_to"`
	Days            int          `json:"n_days"`
	OEEPct          float64      `json:"oee_pct"`
	AvailabilityPct float64      `json:"availability_pct"`
	PerformancePct  float64      `json:"performance_pct"`
	QualityPct      float64      `json:"quality_pct"`
	CasesPerHour    float64      `json:"cases_per_hour"`
	TotalCases      float64      `json:"total_cases"`
	TotalHours      float64      `json:"total_hours"`
	CasesLost       float64      `json:"cases_lost"`
	UtilizationPct  float64      `json:"utilization_pct"`
	DeadHours       int          `json:"dead_hours"`
	Shifts          []ShiftTrend `json:"shifts"`
	TopCauses       []CauseTrend `json:"top_causes"`
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// NewRecord condenses an analysis into a history record.
func NewRecord(res processor.Result, now time.Time) Record {
	p := res.Plant
	rec := Record{
		RunID:           uuid.New().String(),
		RunAt:           now.UTC(),
		DateFrom:        p.DateFrom,
		DateTo:          p.DateTo,
		Days:            p.Days,
		OEEPct:          round(p.Metrics.OEEPct, 1),
		AvailabilityPct: round(p.Metrics.Availability*100, 1),
		PerformancePct:  round(p.Metrics.Performance*100, 1),
		QualityPct:      round(p.Metrics.Quality*100, 1),
		CasesPerHour:    round(p.CasesPerHour, 1),
		TotalCases:      round(p.TotalCases, 0),
		TotalHours:      round(p.TotalHours, 1),
		CasesLost:       round(p.CasesLost, 0),
		UtilizationPct:  round(p.Utilization.UtilizationPct, 1),
		DeadHours:       p.Utilization.DeadHourCount,
	}
	for _, s := range res.Shifts {
		rec.Shifts = append(rec.Shifts, ShiftTrend{
			Shift:        s.Shift,
			OEEPct:       round(s.Metrics.OEEPct, 1),
			CasesPerHour: round(s.CasesPerHour, 0),
			TotalCases:   round(s.TotalCases, 0),
			PrimaryLoss:  PrimaryLoss(s.Metrics),
		})
	}
	for i, c := range res.Pareto {
		if i == TopCauses {
			break
		}
		rec.TopCauses = append(rec.TopCauses, CauseTrend{
			Cause:      c.Cause,
			Minutes:    round(c.Minutes, 0),
			PctOfTotal: round(c.SharePct, 1),
		})
	}
	return rec
}

// PrimaryLoss names the OEE factor furthest from 100%. Ties go to
// availability, then performance.
func PrimaryLoss(m types.WeightedMetrics) string {
	if m == (types.WeightedMetrics{}) {
		return ""
	}
	loss, worst := "Availability", m.Availability
	if m.Performance < worst {
		loss, worst = "Performance", m.Performance
	}
	if m.Quality < worst {
		loss = "Quality"
	}
	return loss
}

// Trend directions of an Overview.
const (
	TrendImproving = "Improving"
	TrendDeclining = "Declining"
	TrendFlat      = "Flat"
)

// TrendBandPts is how far OEE must move, in points, before a trend is not
// flat.
const TrendBandPts = 1.0

// Overview condenses the history into headline trend numbers.
type Overview struct {
	Runs         int     `json:"runs_analyzed"`
	TotalDays    int     `json:"total_days_covered"`
	FirstOEEPct  float64 `json:"first_oee_pct"`
	LatestOEEPct float64 `json:"latest_oee_pct"`
	OEEDeltaPts  float64 `json:"oee_delta_pts"`
	Trend        string  `json:"trend"`
}

// Summarize compares the latest run with the first. It returns nil for an
// empty history.
func Summarize(records []Record) *Overview {
	if len(records) == 0 {
		return nil
	}
	first, latest := records[0], records[len(records)-1]
	delta := decimal.NewFromFloat(latest.OEEPct).Sub(decimal.NewFromFloat(first.OEEPct))
	ov := &Overview{
		Runs:         len(records),
		FirstOEEPct:  first.OEEPct,
		LatestOEEPct: latest.OEEPct,
		OEEDeltaPts:  delta.Round(1).InexactFloat64(),
		Trend:        TrendFlat,
	}
	for _, r := range records {
		ov.TotalDays += r.Days
	}
	band := decimal.NewFromFloat(TrendBandPts)
	switch {
	case delta.GreaterThan(band):
		ov.Trend = TrendImproving
	case delta.LessThan(band.Neg()):
		ov.Trend = TrendDeclining
	}
	return ov
}

// Store is an append-only JSON lines file of run records.
type Store struct {
	Path string

	mu sync.Mutex
}

// NewStore returns a store writing to path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Append writes rec as one line, retrying transient I/O failures until ctx
// is done.
func (s *Store) Append(ctx context.Context, rec Record) error {
	log := logger.New().WithField("component", "history").WithField("path", s.Path)
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	op := func() error {
		if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
			return backoff.Permanent(fmt.Errorf("create history dir: %w", err))
		}
		f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return backoff.Permanent(err)
			}
			return err
		}
		if _, err := f.Write(line); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithField("retry_in", wait.String()).Warn("history append failed")
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	log.WithField("run_id", rec.RunID).Debug("history appended")
	return nil
}

// Load reads every record in file order. A missing file is an empty history.
func (s *Store) Load() ([]Record, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.Path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var out []Record
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("history line %d: %w", n, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return out, nil
}
