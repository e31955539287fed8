package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"oee-analyzer-go/internal/schema"
)

// headerScanRows bounds how far down a sheet the header row is searched
// for; exports often carry a title block above the table.
const headerScanRows = 10

// Open reads a workbook from r.
func Open(r io.Reader) (*excelize.File, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return f, nil
}

// FindSheet returns the workbook sheet that matches spec. When fallback is
// set and the workbook has a single sheet, that sheet is used whatever its
// name.
func FindSheet(f *excelize.File, spec *schema.SheetSpec, fallback bool) (string, error) {
	sheets := f.GetSheetList()
	for _, name := range sheets {
		if spec.MatchesSheet(name) {
			return name, nil
		}
	}
	if fallback && len(sheets) == 1 {
		return sheets[0], nil
	}
	return "", &schema.MismatchError{Sheet: spec.Name}
}

// ReadSheet turns a sheet into a raw table, taking the header from the first
// row in the first headerScanRows rows that satisfies spec (or the first
// row when none does). Blank rows are dropped.
func ReadSheet(f *excelize.File, sheet string, spec *schema.SheetSpec) (schema.Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return schema.Table{}, fmt.Errorf("read rows: %w", err)
	}
	t := schema.Table{Sheet: sheet}
	if len(rows) == 0 {
		return t, nil
	}
	h := locateHeader(rows, spec)
	t.Columns = rows[h]
	for _, r := range rows[h+1:] {
		if blank(r) {
			continue
		}
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

func locateHeader(rows [][]string, spec *schema.SheetSpec) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if schema.Require(spec.Rename(schema.Table{Columns: rows[i]}), spec.Required) == nil {
			return i
		}
	}
	return 0
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// readNormalized finds, reads and normalizes the spec's sheet.
func readNormalized(r io.Reader, spec *schema.SheetSpec, fallback bool) (schema.Table, error) {
	f, err := Open(r)
	if err != nil {
		return schema.Table{}, err
	}
	defer f.Close()
	sheet, err := FindSheet(f, spec, fallback)
	if err != nil {
		return schema.Table{}, err
	}
	raw, err := ReadSheet(f, sheet, spec)
	if err != nil {
		return schema.Table{}, err
	}
	return spec.Normalize(raw)
}
