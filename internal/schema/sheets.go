package schema

// Internal column names of the canonical hourly table.
const (
	ColShiftDate    = "shift_date"
	ColShift        = "shift"
	ColShiftHour    = "shift_hour"
	ColStartTime    = "start_time"
	ColTotalHours   = "total_hours"
	ColProductCode  = "product_code"
	ColJob          = "job"
	ColGoodCases    = "good_cases"
	ColBadCases     = "bad_cases"
	ColTotalCases   = "total_cases"
	ColAvailability = "availability"
	ColPerformance  = "performance"
	ColQuality      = "quality"
	ColOEEPct       = "oee_pct"
)

// Internal column names of the canonical event log.
const (
	ColReason          = "reason"
	ColEndTime         = "end_time"
	ColOEEType         = "oee_type"
	ColDurationMinutes = "duration_minutes"
)

// DayShiftHour is the hourly OEE sheet of the plant export.
var DayShiftHour = NewSheetSpec("DayShiftHour",
	map[string]string{
		"date":            ColShiftDate,
		"shift_date":      ColShiftDate,
		"production_date": ColShiftDate,
		"shift":           ColShift,
		"shift_name":      ColShift,
		"hour":            ColShiftHour,
		"shift_hour":      ColShiftHour,
		"hour_of_shift":   ColShiftHour,
		"start_time":      ColStartTime,
		"duration_hours":  ColTotalHours,
		"total_hours":     ColTotalHours,
		"hours":           ColTotalHours,
		"product_code":    ColProductCode,
		"product":         ColProductCode,
		"sku":             ColProductCode,
		"job":             ColJob,
		"job_number":      ColJob,
		"work_order":      ColJob,
		"good_cases":      ColGoodCases,
		"bad_cases":       ColBadCases,
		"rejected_cases":  ColBadCases,
		"total_cases":     ColTotalCases,
		"cases":           ColTotalCases,
		"availability":    ColAvailability,
		"avail":           ColAvailability,
		"performance":     ColPerformance,
		"perf":            ColPerformance,
		"quality":         ColQuality,
		"oee":             ColOEEPct,
		"oee_(%)":         ColOEEPct,
		"oee_pct":         ColOEEPct,
	},
	[]string{ColShiftDate, ColShift, ColShiftHour, ColTotalHours, ColTotalCases, ColAvailability, ColPerformance},
	[]string{ColStartTime, ColProductCode, ColJob, ColGoodCases, ColBadCases, ColQuality, ColOEEPct},
	"Day Shift Hour", "Hourly",
)

// Events is the downtime event log export.
var Events = NewSheetSpec("Events",
	map[string]string{
		"reason":           ColReason,
		"event_reason":     ColReason,
		"downtime_reason":  ColReason,
		"reason_code":      ColReason,
		"cause":            ColReason,
		"start_time":       ColStartTime,
		"start":            ColStartTime,
		"event_start":      ColStartTime,
		"end_time":         ColEndTime,
		"end":              ColEndTime,
		"event_end":        ColEndTime,
		"shift":            ColShift,
		"oee_type":         ColOEEType,
		"loss_type":        ColOEEType,
		"duration_minutes": ColDurationMinutes,
		"duration_(min)":   ColDurationMinutes,
		"duration":         ColDurationMinutes,
		"minutes":          ColDurationMinutes,
	},
	[]string{ColReason, ColStartTime},
	[]string{ColEndTime, ColShift, ColOEEType, ColDurationMinutes},
	"Event Summary", "Downtime Events",
)
