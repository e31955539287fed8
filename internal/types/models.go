package types

import "time"

// HourlyRecord is one row of the canonical hourly table: a single
// shift-relative hour of one (date, shift) pair.
type HourlyRecord struct {
	DateStr      string  `json:"date_str"`
	Shift        string  `json:"shift"`
	ShiftHour    int     `json:"shift_hour"`
	TotalHours   float64 `json:"total_hours"`
	TotalCases   float64 `json:"total_cases"`
	GoodCases    float64 `json:"good_cases"`
	BadCases     float64 `json:"bad_cases"`
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`
	ProductCode  string  `json:"product_code,omitempty"`
	Job          string  `json:"job,omitempty"`
}

// EventRecord is one free-text downtime event with wall-clock bounds.
type EventRecord struct {
	Reason          string    `json:"reason"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Shift           string    `json:"shift,omitempty"`
	OEEType         string    `json:"oee_type,omitempty"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// Minutes returns the event duration, falling back to end-start when no
// duration was recorded.
func (e EventRecord) Minutes() float64 {
	if e.DurationMinutes > 0 {
		return e.DurationMinutes
	}
	if e.EndTime.After(e.StartTime) && !e.StartTime.IsZero() {
		return e.EndTime.Sub(e.StartTime).Minutes()
	}
	return 0
}

type WeightedMetrics struct {
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`
	OEEPct       float64 `json:"oee_pct"`
}

type UtilizationResult struct {
	UtilizationPct float64 `json:"utilization_pct"`
	ProducingHours float64 `json:"producing_hours"`
	ScheduledHours float64 `json:"scheduled_hours"`
	DeadHourCount  int     `json:"dead_hour_count"`
}

// Dead-hour block patterns.
const (
	PatternConsecutive = "consecutive"
	PatternScattered   = "scattered"
)

// DeadHourBlock is a run of zero-production hours inside one (date, shift).
// Causes and Product are filled in by event correlation.
type DeadHourBlock struct {
	DateStr   string `json:"date_str"`
	Shift     string `json:"shift"`
	FirstHour int    `json:"first_hour"`
	LastHour  int    `json:"last_hour"`
	NHours    int    `json:"n_hours"`
	Pattern   string `json:"pattern"`
	Causes    string `json:"causes"`
	Product   string `json:"product,omitempty"`
}

type DeadHourSummary struct {
	TotalDead        int `json:"total_dead"`
	ConsecutiveHours int `json:"consecutive_hours"`
	ScatteredHours   int `json:"scattered_hours"`
	NBlocks          int `json:"n_blocks"`
}
