package dataset

import (
	"strings"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

// Dataset is an in-memory tabular file: a header and its data rows.
type Dataset struct {
	Source string
	Header []string
	Rows   []Row
}

// Row is one data row. Line is the 1-based line (or sheet row) it was read from.
type Row struct {
	Line   int
	values map[string]string
}

// NewRow builds a row from column/value pairs. Intended for callers that
// assemble datasets without a file, such as tests.
func NewRow(line int, values map[string]string) Row {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Row{Line: line, values: cp}
}

// nullTokens are the cell spellings pandas reads as missing by default.
var nullTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true, "N/A": true,
	"NA": true, "NULL": true, "NaN": true, "None": true, "n/a": true, "nan": true, "null": true,
}

// Get returns the trimmed cell value. ok is false when the cell is null:
// the column is absent from the row, blank, or holds a null token like NA.
func (r Row) Get(col string) (string, bool) {
	v, found := r.values[col]
	if !found {
		return "", false
	}
	v = strings.TrimSpace(v)
	if nullTokens[v] {
		return "", false
	}
	return v, true
}

func (r Row) set(col, val string) {
	r.values[col] = val
}

// HasColumn reports whether the header contains col.
func (d *Dataset) HasColumn(col string) bool {
	for _, h := range d.Header {
		if h == col {
			return true
		}
	}
	return false
}

// Validate checks that every required column is present, then substitutes
// "0" for null cells in the zero-default columns. Other nulls are left in
// place for the transformers to report per row.
func Validate(d *Dataset) error {
	var missing []string
	for _, col := range RequiredColumns {
		if !d.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &domain.SchemaError{Missing: missing}
	}

	for _, row := range d.Rows {
		for _, col := range ZeroDefaultColumns {
			if _, ok := row.Get(col); !ok {
				row.set(col, "0")
			}
		}
	}
	return nil
}
