package classifier

import "strings"

// FaultCategory is the fixed downtime taxonomy.
type FaultCategory string

const (
	Equipment FaultCategory = "Equipment / Mechanical"
	DataGap   FaultCategory = "Data Gap (uncoded)"
	Scheduled FaultCategory = "Scheduled / Non-Production"
	MicroStop FaultCategory = "Micro Stops"
	Process   FaultCategory = "Process / Changeover"
	Other     FaultCategory = "Other / Unclassified"
)

// Categories lists the taxonomy in report order.
var Categories = []FaultCategory{Equipment, Process, MicroStop, Scheduled, DataGap, Other}

var (
	dataGapTokens   = []string{"unassigned", "unknown"}
	scheduledTokens = []string{"break", "lunch", "not scheduled", "comida", "almuerzo", "descanso", "no programado"}
	microStopTokens = []string{"short stop"}
	processTokens   = []string{"day code change", "changeover", "cip"}
	equipmentTokens = []string{
		"caser", "packer", "palletizer", "filler", "seamer", "labeler",
		"conveyor", "wrapper", "erector", "depal", "capper", "retort",
	}
)

var owners = map[FaultCategory]string{
	Equipment: "Maintenance",
	DataGap:   "Shift supervisors (reason coding)",
	Scheduled: "Planning / scheduling",
	MicroStop: "Line operators",
	Process:   "Process engineering / QA",
	Other:     "Operations manager (triage)",
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// ClassifyFault maps a free-text downtime reason onto the taxonomy. Rules
// are evaluated top-down and the first match wins, so "Short Stop - Filler"
// is a micro stop, not equipment.
func ClassifyFault(reason string) FaultCategory {
	s := strings.ToLower(reason)
	if containsAny(s, dataGapTokens) {
		return DataGap
	}
	if containsAny(s, scheduledTokens) {
		return Scheduled
	}
	if containsAny(s, microStopTokens) {
		return MicroStop
	}
	if containsAny(s, processTokens) {
		return Process
	}
	if containsAny(s, equipmentTokens) {
		return Equipment
	}
	// "<Machine> - <Detail>" is the plant's convention for equipment codes.
	if strings.Contains(s, "-") {
		return Equipment
	}
	return Other
}

// Unassigned labels downtime logged without a reason.
const Unassigned = "Unassigned"

// ReasonLabel trims a raw reason and reports blanks as Unassigned, which
// classifies as a data gap.
func ReasonLabel(reason string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return Unassigned
}

// Owner returns who is accountable for a category.
func Owner(c FaultCategory) string {
	if o, ok := owners[c]; ok {
		return o
	}
	return owners[Other]
}
