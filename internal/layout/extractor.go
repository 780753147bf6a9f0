// Package layout parses the fixed-width record layout tables that payers
// publish for their accumulator response files, and slices data rows
// against the resulting column schemas.
package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnSchema describes one column of a fixed-width record.
// Start is always a 0-based byte offset after extraction.
type ColumnSchema struct {
	Name     string
	Start    int
	Length   int
	DataType string
}

// Indexing states whether a layout table's start offsets count from 0 or 1.
type Indexing int

const (
	// IndexUnknown defers the decision to the first extracted row: a first
	// start value of "1" marks the whole table as one-based. The inference
	// is sticky and never re-evaluated.
	IndexUnknown Indexing = iota
	IndexZeroBased
	IndexOneBased
)

// DefaultColumns is the canonical set of logical columns a layout table must
// provide, in role order: field name, start offset, length, data type.
var DefaultColumns = []string{"column", "start", "length", "data_type"}

// Extractor turns layout-table rows into ColumnSchemas. It is built once per
// distinct header row and reused for every row sharing that header.
type Extractor struct {
	nameIdx   int
	startIdx  int
	lengthIdx int
	typeIdx   int
	indexing  Indexing
}

// NewExtractor resolves the required logical columns against the header row.
// required maps onto the four roles of DefaultColumns in order; pass nil for
// the canonical names. A logical column absent from the header is an error.
func NewExtractor(header []string, required []string, indexing Indexing) (*Extractor, error) {
	if required == nil {
		required = DefaultColumns
	}
	if len(required) != len(DefaultColumns) {
		return nil, fmt.Errorf("layout extractor: want %d required columns, got %d", len(DefaultColumns), len(required))
	}

	idx := make([]int, len(required))
	for i, name := range required {
		idx[i] = -1
		for j, h := range header {
			if strings.TrimSpace(h) == name {
				idx[i] = j
				break
			}
		}
		if idx[i] == -1 {
			return nil, fmt.Errorf("layout header missing required column %q", name)
		}
	}

	return &Extractor{
		nameIdx:   idx[0],
		startIdx:  idx[1],
		lengthIdx: idx[2],
		typeIdx:   idx[3],
		indexing:  indexing,
	}, nil
}

// Indexing reports the extractor's resolved indexing mode. Before the first
// Extract on an inferring extractor this is IndexUnknown.
func (e *Extractor) Indexing() Indexing {
	return e.indexing
}

// Extract converts one layout-table row into a ColumnSchema, normalizing the
// start offset to 0-based.
func (e *Extractor) Extract(row []string) (ColumnSchema, error) {
	max := e.nameIdx
	for _, i := range []int{e.startIdx, e.lengthIdx, e.typeIdx} {
		if i > max {
			max = i
		}
	}
	if len(row) <= max {
		return ColumnSchema{}, fmt.Errorf("layout row has %d cells, need at least %d", len(row), max+1)
	}

	startRaw := strings.TrimSpace(row[e.startIdx])
	if e.indexing == IndexUnknown {
		if startRaw == "1" {
			e.indexing = IndexOneBased
		} else {
			e.indexing = IndexZeroBased
		}
	}

	start, err := strconv.Atoi(startRaw)
	if err != nil {
		return ColumnSchema{}, fmt.Errorf("layout start %q: %w", startRaw, err)
	}
	if e.indexing == IndexOneBased {
		start--
	}

	lengthRaw := strings.TrimSpace(row[e.lengthIdx])
	length, err := strconv.Atoi(lengthRaw)
	if err != nil {
		return ColumnSchema{}, fmt.Errorf("layout length %q: %w", lengthRaw, err)
	}

	cs := ColumnSchema{
		Name:     strings.TrimSpace(row[e.nameIdx]),
		Start:    start,
		Length:   length,
		DataType: strings.TrimSpace(row[e.typeIdx]),
	}
	if cs.Name == "" {
		return ColumnSchema{}, fmt.Errorf("layout row has empty column name")
	}
	if cs.Start < 0 {
		return ColumnSchema{}, fmt.Errorf("layout column %q: negative start offset %d", cs.Name, cs.Start)
	}
	if cs.Length < 1 {
		return ColumnSchema{}, fmt.Errorf("layout column %q: non-positive length %d", cs.Name, cs.Length)
	}
	return cs, nil
}
