package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Table is a raw sheet: a header row plus string cells.
type Table struct {
	Sheet   string
	Columns []string
	Rows    [][]string
}

// Index returns the column position of name, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries column name.
func (t Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Value returns the trimmed cell of row at column name; absent columns and
// short rows read as "".
func (t Table) Value(row int, name string) string {
	idx := t.Index(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][idx])
}

// SheetSpec describes one expected sheet: its name, the header aliases that
// map export headers onto internal names, and the internal columns that
// must be present after renaming.
type SheetSpec struct {
	Name      string
	AltNames  []string
	Required  []string
	Optional  []string
	Aliases   map[string]string
	compacted map[string]string
}

// MismatchError is returned when a required sheet or column is absent.
type MismatchError struct {
	Sheet   string
	Missing []string
}

func (e *MismatchError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("schema mismatch: sheet %q not found", e.Sheet)
	}
	return fmt.Sprintf("schema mismatch: sheet %q missing columns: %s", e.Sheet, strings.Join(e.Missing, ", "))
}

// IsMismatch reports whether err wraps a *MismatchError.
func IsMismatch(err error) bool {
	var m *MismatchError
	return errors.As(err, &m)
}

// NormalizeHeader case-folds, trims and collapses whitespace, joining words
// with a single underscore: "  Shift   Date " -> "shift_date".
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "_")
}

// compactKey drops everything but letters and digits, so "Duration-Hours",
// "DurationHours" and "duration hours" share one key.
func compactKey(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewSheetSpec builds a spec and precomputes its compact alias keys. Alias
// keys are given in normalized form (see NormalizeHeader).
func NewSheetSpec(name string, aliases map[string]string, required, optional []string, altNames ...string) *SheetSpec {
	s := &SheetSpec{
		Name:     name,
		AltNames: altNames,
		Required: required,
		Optional: optional,
		Aliases:  aliases,
	}
	s.compacted = compactAliases(aliases)
	return s
}

func compactAliases(aliases map[string]string) map[string]string {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(aliases))
	for _, k := range keys {
		ck := compactKey(k)
		if _, taken := out[ck]; !taken {
			out[ck] = aliases[k]
		}
	}
	return out
}

// InternalName resolves a raw header against the spec's aliases. Exact
// normalized matches win over compact (punctuation-blind) matches; headers
// that match neither keep their normalized text.
func (s *SheetSpec) InternalName(raw string) string {
	norm := NormalizeHeader(raw)
	if name, ok := s.Aliases[norm]; ok {
		return name
	}
	compacted := s.compacted
	if compacted == nil {
		compacted = compactAliases(s.Aliases)
	}
	if name, ok := compacted[compactKey(raw)]; ok {
		return name
	}
	return norm
}

// Rename maps every header of t to its internal name. When two headers
// resolve to the same internal name the first keeps it and later ones keep
// their raw header text.
func (s *SheetSpec) Rename(t Table) Table {
	out := Table{Sheet: t.Sheet, Rows: t.Rows, Columns: make([]string, len(t.Columns))}
	seen := make(map[string]bool, len(t.Columns))
	for i, raw := range t.Columns {
		name := s.InternalName(raw)
		if seen[name] {
			name = raw
		}
		seen[name] = true
		out.Columns[i] = name
	}
	return out
}

// Require checks that every required column is present.
func Require(t Table, required []string) error {
	var missing []string
	for _, col := range required {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MismatchError{Sheet: t.Sheet, Missing: missing}
	}
	return nil
}

// Normalize renames t's headers and verifies the required columns.
func (s *SheetSpec) Normalize(t Table) (Table, error) {
	renamed := s.Rename(t)
	if err := Require(renamed, s.Required); err != nil {
		return renamed, err
	}
	return renamed, nil
}

// MatchesSheet reports whether a workbook sheet name is this spec's sheet.
func (s *SheetSpec) MatchesSheet(name string) bool {
	key := compactKey(name)
	if key == compactKey(s.Name) {
		return true
	}
	for _, alt := range s.AltNames {
		if key == compactKey(alt) {
			return true
		}
	}
	return false
}
