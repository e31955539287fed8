package deadhours

import (
	"fmt"
	"strings"
	"time"
)

// ShiftStart is when a shift's first hour begins, relative to the midnight
// of the date the shift is attributed to. DayOffset moves that midnight,
// e.g. -1 for a night shift booked on the day it ends.
type ShiftStart struct {
	TimeOfDay time.Duration
	DayOffset int
}

// ShiftClock resolves shift-relative hours to wall-clock instants.
type ShiftClock struct {
	starts map[string]ShiftStart
	loc    *time.Location
}

// DefaultShiftStarts are the plant's standard three shifts.
var DefaultShiftStarts = map[string]ShiftStart{
	"1st": {TimeOfDay: 7 * time.Hour},
	"2nd": {TimeOfDay: 15 * time.Hour},
	"3rd": {TimeOfDay: 23 * time.Hour},
}

// NewShiftClock builds a clock from shift label -> start. Labels are
// canonicalized, so "3rd Shift" and "Third" configure the same shift. A
// nil location means UTC.
func NewShiftClock(starts map[string]ShiftStart, loc *time.Location) ShiftClock {
	if loc == nil {
		loc = time.UTC
	}
	c := ShiftClock{starts: make(map[string]ShiftStart, len(starts)), loc: loc}
	for label, s := range starts {
		c.starts[CanonicalShift(label)] = s
	}
	return c
}

// DefaultShiftClock uses DefaultShiftStarts in UTC.
func DefaultShiftClock() ShiftClock {
	return NewShiftClock(DefaultShiftStarts, time.UTC)
}

// Location is the zone wall-clock instants are expressed in.
func (c ShiftClock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

var ordinalWords = map[string]string{
	"first":  "1st",
	"second": "2nd",
	"third":  "3rd",
	"one":    "1st",
	"two":    "2nd",
	"three":  "3rd",
	"1":      "1st",
	"2":      "2nd",
	"3":      "3rd",
}

// CanonicalShift reduces a shift label to its first word, lower-cased, with
// ordinal words folded: "1st Shift", "First shift" and "1" are all "1st".
func CanonicalShift(label string) string {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) == 0 {
		return ""
	}
	head := fields[0]
	if head == "shift" && len(fields) > 1 {
		head = fields[1]
	}
	if o, ok := ordinalWords[head]; ok {
		return o
	}
	return head
}

// ParseDate reads a YYYY-MM-DD date in the clock's location.
func (c ShiftClock) ParseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), c.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse shift date %q: %w", date, err)
	}
	return d, nil
}

// HourStart returns the wall-clock start of shift-relative hour (1-based)
// of shift on date. Hours past midnight fall on the following calendar day.
// ok is false when the shift is not configured or the date is unreadable.
func (c ShiftClock) HourStart(date, shift string, shiftHour int) (time.Time, bool) {
	s, ok := c.starts[CanonicalShift(shift)]
	if !ok {
		return time.Time{}, false
	}
	d, err := c.ParseDate(date)
	if err != nil {
		return time.Time{}, false
	}
	d = d.AddDate(0, 0, s.DayOffset)
	return d.Add(s.TimeOfDay + time.Duration(shiftHour-1)*time.Hour), true
}
