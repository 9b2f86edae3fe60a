package models

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"bitbucket.org/mmdatafocus/loanpulse_backend/utils"
	"github.com/shopspring/decimal"
)

// NormalizeStats makes row-level data loss observable: sources are cleaned
// by coercion and dropping, never by failing the load.
type NormalizeStats struct {
	RowsRead     int `json:"rowsRead"`
	RowsDropped  int `json:"rowsDropped"`
	CellsCoerced int `json:"cellsCoerced"`
}

// rawTable is a parsed delimited file: a header index plus the data rows.
// Column lookup is by trimmed lower-case name; extra columns are ignored.
type rawTable struct {
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader) (*rawTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Ragged rows happen in hand-exported files; short rows read as missing cells.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := columns[key]; !exists {
			columns[key] = idx
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("unable to read rows: %w", err)
		}
		rows = append(rows, record)
	}

	return &rawTable{columns: columns, rows: rows}, nil
}

// requireColumns reports every missing column at once, not just the first.
func (t *rawTable) requireColumns(kind string, names []string) error {
	var missing []string
	for _, name := range names {
		if _, ok := t.columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return utils.NewSchemaError(kind, missing)
	}
	return nil
}

func (t *rawTable) cell(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// canonicalOrderId collapses numeric/string identifier mismatches across
// sources: "1001", "1001.0" and " 1001 " all compare equal. Non-numeric
// identifiers are kept verbatim after trimming.
func canonicalOrderId(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d.String()
	}
	return s
}
