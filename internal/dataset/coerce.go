package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// number parses a spreadsheet cell as a float. Thousands separators are
// ignored and a trailing "%" divides by 100. Anything unreadable is 0.
func number(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if pct {
		v /= 100
	}
	return v
}

// count is a non-negative number.
func count(s string) float64 {
	if v := number(s); v > 0 {
		return v
	}
	return 0
}

// fraction is a number in [0, 1]; out-of-range values are 0.
func fraction(s string) float64 {
	v := number(s)
	if v < 0 || v > 1 {
		return 0
	}
	return v
}

func integer(s string) int {
	return int(math.Round(number(s)))
}

// Serial day numbers excelize may hand back for unformatted date cells.
const (
	minSerialDate = 20000 // 1954
	maxSerialDate = 80000 // 2119
)

func serial(s string) (time.Time, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < minSerialDate || v > maxSerialDate {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var dateLayouts = []string{
	"2006-01-02",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"2-Jan-06",
}

// dateString renders a date cell as YYYY-MM-DD. Unreadable dates are kept
// as trimmed text so rows still group by them.
func dateString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, ok := serial(s); ok {
		return t.Format("2006-01-02")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"01-02-06 15:04",
	"01-02-06 15:04:05",
}

// timestamp parses a wall-clock cell in loc. The zero time means unreadable.
func timestamp(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, ok := serial(s); ok {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
