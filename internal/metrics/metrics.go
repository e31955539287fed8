package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"oee-analyzer-go/internal/processor"
)

// Metric family names exposed on /metrics.
const (
	RequestsTotal     = "oee_analyzer_requests_total"
	LastOEE           = "oee_last_run_oee_pct"
	LastAvailability  = "oee_last_run_availability_ratio"
	LastPerformance   = "oee_last_run_performance_ratio"
	LastQuality       = "oee_last_run_quality_ratio"
	LastUtilization   = "oee_last_run_utilization_pct"
	LastDeadHours     = "oee_last_run_dead_hours"
	LastShiftOEE      = "oee_last_run_shift_oee_pct"
	LastDowntimeByCat = "oee_last_run_downtime_minutes"
)

// Registry keeps request counters and the KPIs of the most recent run.
type Registry struct {
	mu       sync.Mutex
	requests map[string]float64
	last     *processor.Result
}

func NewRegistry() *Registry {
	return &Registry{requests: map[string]float64{}}
}

// ObserveRequest counts one /analyze outcome by its status label.
func (r *Registry) ObserveRequest(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[status]++
}

// ObserveRun records res as the latest completed analysis.
func (r *Registry) ObserveRun(res processor.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &res
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: &name, Value: &value}
}

func gauge(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Gauge: &dto.Gauge{Value: &v}}
}

func family(name, help string, typ dto.MetricType, ms ...*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{Name: &name, Help: &help, Type: typ.Enum(), Metric: ms}
}

// Families snapshots the registry as metric families. Families without
// samples are left out; the text format cannot express them.
func (r *Registry) Families() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]string, 0, len(r.requests))
	for s := range r.requests {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	var counters []*dto.Metric
	for _, s := range statuses {
		v := r.requests[s]
		counters = append(counters, &dto.Metric{
			Label:   []*dto.LabelPair{label("status", s)},
			Counter: &dto.Counter{Value: &v},
		})
	}
	var out []*dto.MetricFamily
	if len(counters) > 0 {
		out = append(out, family(RequestsTotal, "Analyze requests by outcome.", dto.MetricType_COUNTER, counters...))
	}
	if r.last == nil {
		return out
	}

	p := r.last.Plant
	out = append(out,
		family(LastOEE, "Plant OEE of the latest run.", dto.MetricType_GAUGE, gauge(p.Metrics.OEEPct)),
		family(LastAvailability, "Hour-weighted availability of the latest run.", dto.MetricType_GAUGE, gauge(p.Metrics.Availability)),
		family(LastPerformance, "Hour-weighted performance of the latest run.", dto.MetricType_GAUGE, gauge(p.Metrics.Performance)),
		family(LastQuality, "Case-weighted quality of the latest run.", dto.MetricType_GAUGE, gauge(p.Metrics.Quality)),
		family(LastUtilization, "Share of scheduled hours that produced cases.", dto.MetricType_GAUGE, gauge(p.Utilization.UtilizationPct)),
		family(LastDeadHours, "Scheduled hours without output in the latest run.", dto.MetricType_GAUGE, gauge(float64(p.Utilization.DeadHourCount))),
	)

	var shifts []*dto.Metric
	for _, s := range r.last.Shifts {
		shifts = append(shifts, gauge(s.Metrics.OEEPct, label("shift", s.Shift)))
	}
	if len(shifts) > 0 {
		out = append(out, family(LastShiftOEE, "Per-shift OEE of the latest run.", dto.MetricType_GAUGE, shifts...))
	}

	var downtime []*dto.Metric
	for _, f := range r.last.FaultSummary {
		downtime = append(downtime, gauge(f.Minutes, label("category", f.Category)))
	}
	if len(downtime) > 0 {
		out = append(out, family(LastDowntimeByCat, "Downtime minutes per fault category in the latest run.", dto.MetricType_GAUGE, downtime...))
	}
	return out
}

// WriteText renders the registry in the Prometheus text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Families() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ContentType is the Content-Type of WriteText's output.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))
