package domain

import "fmt"

// TableRef is a structured table lifted out of page text.
//
// Headers fixes the column order. Every row maps each header to a cell
// value; NewTableRef pads short rows with empty strings and truncates
// long ones so the row key set always equals the header set.
type TableRef struct {
	// TableID is deterministic: "{source}:p{page}:table{k}".
	TableID string

	// Headers in column order. Always at least two.
	Headers []string

	// Rows maps header -> cell for each data row. Never empty.
	Rows []map[string]string
}

// NewTableRef validates and constructs a TableRef from raw tokenized rows.
// It fails when fewer than two headers are present or when no data row
// contributes at least one token; a table must not exist in either case.
func NewTableRef(tableID string, headers []string, rawRows [][]string) (TableRef, error) {
	if len(headers) < 2 {
		return TableRef{}, fmt.Errorf("table %s: need at least 2 headers, got %d: %w",
			tableID, len(headers), ErrInvalidInput)
	}

	rows := make([]map[string]string, 0, len(rawRows))
	for _, raw := range rawRows {
		if len(raw) == 0 {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(raw) {
				row[h] = raw[i]
			} else {
				// Short rows are right-padded to the header width.
				row[h] = ""
			}
		}
		// Tokens beyond the header width are dropped by construction.
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return TableRef{}, fmt.Errorf("table %s: no valid rows: %w", tableID, ErrInvalidInput)
	}

	return TableRef{TableID: tableID, Headers: headers, Rows: rows}, nil
}
