package model

import (
	"fmt"
	"strings"
)

// MaxColumnCount defines the maximum number of columns allowed in a table
const MaxColumnCount = 2000

// Table represents decoded upload contents before materialization.
type Table struct {
	// header is the normalized column header.
	header Header
	// records holds one entry per data row, each padded to len(header).
	records []Record
}

// NewTable validates and normalizes a decoded header and its records.
// Blank header cells are named column_<n>; duplicate names, rows wider than
// the header and more than MaxColumnCount columns are rejected.
func NewTable(header Header, records []Record) (*Table, error) {
	if len(header) == 0 {
		return nil, NewErrorContext("decode").WithDetails("no header row").Error(ErrParse)
	}
	if len(header) > MaxColumnCount {
		return nil, NewErrorContext("decode").
			WithDetails(fmt.Sprintf("%d columns exceeds limit of %d", len(header), MaxColumnCount)).
			Error(ErrParse)
	}

	normalized := make(Header, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		normalized[i] = h
	}
	if err := validateColumnNames(normalized); err != nil {
		return nil, NewErrorContext("decode").Wrap(ErrParse, err)
	}

	padded := make([]Record, 0, len(records))
	for i, r := range records {
		if len(r) > len(normalized) {
			return nil, NewErrorContext("decode").
				WithDetails(fmt.Sprintf("row %d has %d fields, header has %d", i+1, len(r), len(normalized))).
				Error(ErrParse)
		}
		if len(r) < len(normalized) {
			full := make(Record, len(normalized))
			copy(full, r)
			r = full
		}
		padded = append(padded, r)
	}

	return &Table{
		header:  normalized,
		records: padded,
	}, nil
}

// validateColumnNames checks for duplicate column names and returns error if found.
// Names are compared case-insensitively, as SQLite compares identifiers.
func validateColumnNames(columns []string) error {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		key := strings.ToLower(col)
		if seen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, col)
		}
		seen[key] = true
	}
	return nil
}

// Header return table header.
func (t *Table) Header() Header {
	return t.header
}

// Records return table records.
func (t *Table) Records() []Record {
	return t.records
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.records)
}

// Column returns the raw values of the i-th column.
func (t *Table) Column(i int) []string {
	return ColumnValues(t.records, i)
}

// Schema infers the table schema sequentially.
func (t *Table) Schema() Schema {
	return InferColumns(t.header, t.records)
}
