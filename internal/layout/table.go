package layout

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Table is the full column schema for one fixed-width record type.
type Table []ColumnSchema

// LoadTable reads a CSV layout document (header row plus one row per column)
// and returns the compiled Table. required and indexing are passed through to
// the extractor; nil/IndexUnknown give the canonical defaults.
func LoadTable(r io.Reader, required []string, indexing Indexing) (Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read layout header: %w", err)
	}

	ex, err := NewExtractor(header, required, indexing)
	if err != nil {
		return nil, err
	}

	var t Table
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read layout row: %w", err)
		}
		cs, err := ex.Extract(row)
		if err != nil {
			return nil, err
		}
		t = append(t, cs)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("layout table has no column rows")
	}
	return t, nil
}

// Slice carves a fixed-width data row into named fields. Columns that fall
// wholly or partly past the end of the line yield whatever is present;
// payers routinely strip trailing fill. Values are space-trimmed.
func (t Table) Slice(line string) map[string]string {
	fields := make(map[string]string, len(t))
	for _, c := range t {
		var v string
		if c.Start < len(line) {
			end := c.Start + c.Length
			if end > len(line) {
				end = len(line)
			}
			v = strings.TrimSpace(line[c.Start:end])
		}
		fields[c.Name] = v
	}
	return fields
}

// Width returns the record length implied by the table: the largest
// start+length over all columns.
func (t Table) Width() int {
	w := 0
	for _, c := range t {
		if end := c.Start + c.Length; end > w {
			w = end
		}
	}
	return w
}
