package deadhours

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"oee-analyzer-go/internal/classifier"
	"oee-analyzer-go/internal/types"
)

// CauseSeparator joins the causes attached to one block.
const CauseSeparator = "; "

// Window resolves a block's shift-relative hours to a wall-clock interval
// [start, end).
func (c ShiftClock) Window(b types.DeadHourBlock) (start, end time.Time, ok bool) {
	start, ok = c.HourStart(b.DateStr, b.Shift, b.FirstHour)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	last, _ := c.HourStart(b.DateStr, b.Shift, b.LastHour)
	return start, last.Add(time.Hour), true
}

// overlap is the length of the non-empty intersection of [aStart, aEnd) and
// [bStart, bEnd), or zero when they only touch or are disjoint.
func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	if !(aStart.Before(bEnd) && aEnd.After(bStart)) {
		return 0
	}
	lo, hi := aStart, aEnd
	if bStart.After(lo) {
		lo = bStart
	}
	if bEnd.Before(hi) {
		hi = bEnd
	}
	return hi.Sub(lo)
}

func eventEnd(e types.EventRecord) time.Time {
	if e.EndTime.IsZero() && e.DurationMinutes > 0 {
		return e.StartTime.Add(time.Duration(e.DurationMinutes * float64(time.Minute)))
	}
	return e.EndTime
}

// minCauseOverlap is the shortest overlap that attributes a cause to a block.
const minCauseOverlap = time.Minute

type interval struct{ start, end time.Time }

type cause struct {
	reason  string
	spans   []interval
	overlap time.Duration
	seen    int
}

// covered is the length of the union of spans, so repeated or overlapping
// events for one reason are measured once.
func covered(spans []interval) time.Duration {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })
	var total time.Duration
	var cur interval
	for i, sp := range spans {
		if i == 0 {
			cur = sp
			continue
		}
		if sp.start.After(cur.end) {
			total += cur.end.Sub(cur.start)
			cur = sp
			continue
		}
		if sp.end.After(cur.end) {
			cur.end = sp.end
		}
	}
	if len(spans) > 0 {
		total += cur.end.Sub(cur.start)
	}
	return total
}

// Correlate attaches probable causes and the running product to each
// dead-hour block, in place, and returns the blocks.
//
// Each block's window is matched against every event's [start, end). Causes
// are deduplicated by reason and ordered by overlapping minutes, largest
// first. A reason's overlap is the union of its events' intersections with
// the window and never exceeds it. Overlaps under a minute are ignored.
// When a single cause covers the whole window it is written bare;
// otherwise every cause carries its overlap as "<reason> (<N> min)". Blocks
// with no overlapping event get an empty Causes. An empty event log leaves
// the blocks untouched.
func Correlate(blocks []types.DeadHourBlock, events []types.EventRecord, hourly []types.HourlyRecord, clock ShiftClock) []types.DeadHourBlock {
	if len(blocks) == 0 {
		return []types.DeadHourBlock{}
	}
	if len(events) == 0 {
		return blocks
	}
	for i := range blocks {
		b := &blocks[i]
		b.Causes = ""
		if p := blockProduct(*b, hourly); p != "" {
			b.Product = p
		}
		start, end, ok := clock.Window(*b)
		if !ok {
			continue
		}
		b.Causes = formatCauses(matchCauses(start, end, events), end.Sub(start))
	}
	return blocks
}

func matchCauses(start, end time.Time, events []types.EventRecord) []*cause {
	byReason := map[string]*cause{}
	var causes []*cause
	for _, e := range events {
		reason := strings.TrimSpace(e.Reason)
		if reason == "" || e.StartTime.IsZero() {
			continue
		}
		if overlap(start, end, e.StartTime, eventEnd(e)) <= 0 {
			continue
		}
		sp := interval{start: e.StartTime, end: eventEnd(e)}
		if sp.start.Before(start) {
			sp.start = start
		}
		if sp.end.After(end) {
			sp.end = end
		}
		c, ok := byReason[reason]
		if !ok {
			c = &cause{reason: reason, seen: len(causes)}
			byReason[reason] = c
			causes = append(causes, c)
		}
		c.spans = append(c.spans, sp)
	}
	kept := causes[:0]
	for _, c := range causes {
		if c.overlap = covered(c.spans); c.overlap >= minCauseOverlap {
			kept = append(kept, c)
		}
	}
	causes = kept
	sort.SliceStable(causes, func(i, j int) bool {
		if causes[i].overlap != causes[j].overlap {
			return causes[i].overlap > causes[j].overlap
		}
		return causes[i].seen < causes[j].seen
	})
	return causes
}

func formatCauses(causes []*cause, window time.Duration) string {
	if len(causes) == 0 {
		return ""
	}
	if len(causes) == 1 && causes[0].overlap >= window {
		return causes[0].reason
	}
	parts := make([]string, 0, len(causes))
	for _, c := range causes {
		parts = append(parts, fmt.Sprintf("%s (%d min)", c.reason, int(math.Round(c.overlap.Minutes()))))
	}
	return strings.Join(parts, CauseSeparator)
}

// blockProduct is the product of the earliest hour in the block that
// records one.
func blockProduct(b types.DeadHourBlock, hourly []types.HourlyRecord) string {
	best, product := 0, ""
	for _, r := range hourly {
		if r.DateStr != b.DateStr || r.Shift != b.Shift {
			continue
		}
		if r.ShiftHour < b.FirstHour || r.ShiftHour > b.LastHour {
			continue
		}
		name := classifier.NormalizeProduct(r.ProductCode)
		if name == classifier.UnknownProduct {
			continue
		}
		if product == "" || r.ShiftHour < best {
			best, product = r.ShiftHour, name
		}
	}
	return product
}
