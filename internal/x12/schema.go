// Package x12 encodes payer accumulator submissions into segment-based
// interchange files. A FileSchema compiled from a declarative JSON document
// drives the writer; the schema is immutable after load and safe to share
// across concurrent Generate calls.
package x12

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Field binds a segment field name to its 1-based wire position.
type Field struct {
	Position int
	Name     string
}

// Segment describes one interchange line type: the literal abbreviation
// written first on the line and the ordered field positions that follow.
type Segment struct {
	Name         string
	Abbreviation string
	Fields       []Field

	maxPosition int
	byName      map[string]int // field name → 1-based position
}

// Position returns the 1-based wire position for a field name.
func (s *Segment) Position(field string) (int, bool) {
	p, ok := s.byName[field]
	return p, ok
}

// FileSchema maps segment names (loop-qualified where applicable) to their
// compiled Segment definitions.
type FileSchema struct {
	segments map[string]*Segment
}

// Segment looks up a segment definition by name.
func (fs *FileSchema) Segment(name string) (*Segment, bool) {
	s, ok := fs.segments[name]
	return s, ok
}

// Len returns the number of segment definitions in the schema.
func (fs *FileSchema) Len() int {
	return len(fs.segments)
}

// schemaDoc mirrors the declarative schema JSON: a $defs.segments object
// whose entries declare an abbreviation, an ordered properties object, and
// optionally explicit 1-based positions parallel to the properties.
type schemaDoc struct {
	Defs struct {
		Segments map[string]segmentDef `json:"segments"`
	} `json:"$defs"`
}

type segmentDef struct {
	Abbreviation string          `json:"abbreviation"`
	Properties   json.RawMessage `json:"properties"`
	Positions    []int           `json:"positions"`
}

// LoadSchema reads and compiles a segment schema document. All structural
// problems surface here, before any encode is attempted.
func LoadSchema(r io.Reader) (*FileSchema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read segment schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema compiles a segment schema from raw JSON.
func ParseSchema(data []byte) (*FileSchema, error) {
	var doc schemaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse segment schema: %w", err)
	}
	if len(doc.Defs.Segments) == 0 {
		return nil, fmt.Errorf("segment schema declares no segments under $defs.segments")
	}

	fs := &FileSchema{segments: make(map[string]*Segment, len(doc.Defs.Segments))}
	for name, def := range doc.Defs.Segments {
		seg, err := compileSegment(name, def)
		if err != nil {
			return nil, err
		}
		fs.segments[name] = seg
	}
	return fs, nil
}

func compileSegment(name string, def segmentDef) (*Segment, error) {
	fieldNames, err := objectKeys(def.Properties)
	if err != nil {
		return nil, fmt.Errorf("segment %q properties: %w", name, err)
	}
	if def.Abbreviation == "" && len(fieldNames) == 0 {
		return nil, fmt.Errorf("segment %q declares neither an abbreviation nor properties", name)
	}

	positions := def.Positions
	if positions == nil {
		positions = make([]int, len(fieldNames))
		for i := range fieldNames {
			positions[i] = i + 1
		}
	}
	if len(positions) != len(fieldNames) {
		return nil, fmt.Errorf("segment %q: %d positions for %d properties", name, len(positions), len(fieldNames))
	}

	seg := &Segment{
		Name:         name,
		Abbreviation: def.Abbreviation,
		Fields:       make([]Field, 0, len(fieldNames)),
		byName:       make(map[string]int, len(fieldNames)),
	}
	seen := make(map[int]string, len(positions))
	for i, fn := range fieldNames {
		pos := positions[i]
		if pos < 1 {
			return nil, fmt.Errorf("segment %q field %q: position %d must be >= 1", name, fn, pos)
		}
		if prev, dup := seen[pos]; dup {
			return nil, fmt.Errorf("segment %q: fields %q and %q share position %d", name, prev, fn, pos)
		}
		if _, dup := seg.byName[fn]; dup {
			return nil, fmt.Errorf("segment %q: duplicate field %q", name, fn)
		}
		seen[pos] = fn
		seg.byName[fn] = pos
		seg.Fields = append(seg.Fields, Field{Position: pos, Name: fn})
		if pos > seg.maxPosition {
			seg.maxPosition = pos
		}
	}
	return seg, nil
}

// objectKeys returns a JSON object's keys in document order. encoding/json
// maps do not preserve order, so the raw object is walked token by token.
func objectKeys(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("want a JSON object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("want an object key, got %v", tok)
		}
		keys = append(keys, key)

		// Discard the value, whatever its shape.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return keys, nil
}
