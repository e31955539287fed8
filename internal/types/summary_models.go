// internal/types/summary_models.go
package types

// --------------------------------------------
// Plant-level result
// --------------------------------------------
type PlantSummary struct {
	DateFrom     string            `json:"date_from"`
	DateTo       string            `json:"date_to"`
	Days         int               `json:"n_days"`
	TotalHours   float64           `json:"total_hours"`
	TotalCases   float64           `json:"total_cases"`
	GoodCases    float64           `json:"good_cases"`
	CasesPerHour float64           `json:"cases_per_hour"`
	BenchmarkCPH float64           `json:"benchmark_cases_per_hour"`
	CasesLost    float64           `json:"cases_lost"`
	Metrics      WeightedMetrics   `json:"metrics"`
	Utilization  UtilizationResult `json:"utilization"`
}

// --------------------------------------------
// Per-shift result
// --------------------------------------------
type ShiftSummary struct {
	Shift        string            `json:"shift"`
	TotalHours   float64           `json:"total_hours"`
	TotalCases   float64           `json:"total_cases"`
	GoodCases    float64           `json:"good_cases"`
	CasesPerHour float64           `json:"cases_per_hour"`
	Metrics      WeightedMetrics   `json:"metrics"`
	Utilization  UtilizationResult `json:"utilization"`
}

// --------------------------------------------
// Per-shift, per-shift-hour result
// --------------------------------------------
type ShiftHourSummary struct {
	Shift      string          `json:"shift"`
	ShiftHour  int             `json:"shift_hour"`
	Records    int             `json:"records"`
	DeadHours  int             `json:"dead_hours"`
	TotalCases float64         `json:"total_cases"`
	Metrics    WeightedMetrics `json:"metrics"`
}

// --------------------------------------------
// Downtime by fault category
// --------------------------------------------
type FaultSummaryRow struct {
	Category string  `json:"category"`
	Minutes  float64 `json:"total_minutes"`
	Hours    float64 `json:"total_hours"`
	Events   int     `json:"events"`
	SharePct float64 `json:"pct_of_all_downtime"`
	Owner    string  `json:"owner"`
}

// --------------------------------------------
// Downtime by raw cause, largest first
// --------------------------------------------
type ParetoRow struct {
	Cause         string  `json:"cause"`
	FaultType     string  `json:"fault_type"`
	Minutes       float64 `json:"total_minutes"`
	Events        int     `json:"events"`
	SharePct      float64 `json:"pct_of_total"`
	CumulativePct float64 `json:"cumulative_pct"`
}
