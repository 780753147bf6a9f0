package x12

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Separators holds the four wire-format delimiter characters. They are fixed
// per deployment, not per call, and must be mutually distinct.
type Separators struct {
	Element   string `yaml:"element"`   // between fields of a segment
	Composite string `yaml:"composite"` // between sub-values of a composite field
	Segment   string `yaml:"segment"`   // segment terminator
	Line      string `yaml:"line"`      // after the segment terminator
}

// DefaultSeparators are the delimiters used by the supported payer feeds.
var DefaultSeparators = Separators{
	Element:   "*",
	Composite: ":",
	Segment:   "~",
	Line:      "\n",
}

// Validate checks that every separator is a single character and that no two
// separators collide.
func (s Separators) Validate() error {
	all := []struct {
		name  string
		value string
	}{
		{"element", s.Element},
		{"composite", s.Composite},
		{"segment", s.Segment},
		{"line", s.Line},
	}
	seen := make(map[string]string, len(all))
	for _, sep := range all {
		if len(sep.value) != 1 {
			return fmt.Errorf("%s separator %q: want exactly one character", sep.name, sep.value)
		}
		if prev, dup := seen[sep.value]; dup {
			return fmt.Errorf("%s and %s separators are both %q", prev, sep.name, sep.value)
		}
		seen[sep.value] = sep.name
	}
	return nil
}

// Writer encodes requests against a compiled FileSchema. A Writer is
// read-only after construction and safe for concurrent Generate calls.
type Writer struct {
	schema *FileSchema
	sep    Separators
}

// NewWriter builds a Writer over schema with the given separators.
func NewWriter(schema *FileSchema, sep Separators) (*Writer, error) {
	if err := sep.Validate(); err != nil {
		return nil, err
	}
	return &Writer{schema: schema, sep: sep}, nil
}

// Generate encodes req and writes the wire text to out. The whole file is
// rendered before the first byte is written: a partially delivered payer
// file can corrupt downstream accumulator state, so any error yields no
// output at all. Output is byte-identical across runs for identical input.
func (w *Writer) Generate(req Request, out io.Writer) error {
	var buf bytes.Buffer
	if err := w.encode(req, "", &buf); err != nil {
		return err
	}
	_, err := out.Write(buf.Bytes())
	return err
}

// encode walks the request in order, expanding loops depth-first with the
// loop key prefixed onto child segment names.
func (w *Writer) encode(req Request, prefix string, buf *bytes.Buffer) error {
	for _, item := range req {
		name := item.Key
		if prefix != "" {
			name = prefix + "_" + name
		}

		switch item.Kind {
		case LoopItem:
			for _, child := range item.Loops {
				if err := w.encode(child, name, buf); err != nil {
					return err
				}
			}
		case SegmentItem:
			seg, ok := w.schema.Segment(name)
			if !ok {
				return fmt.Errorf("unknown segment %q in encoding request", name)
			}
			line, err := w.renderSegment(seg, item.Fields)
			if err != nil {
				return err
			}
			buf.WriteString(line)
		default:
			return fmt.Errorf("request item %q has unknown kind %d", item.Key, item.Kind)
		}
	}
	return nil
}

// renderSegment produces one wire line: the abbreviation, the populated
// field slots joined by the element separator with trailing empties trimmed,
// the segment terminator, and the line separator.
func (w *Writer) renderSegment(seg *Segment, fields []FieldValue) (string, error) {
	values := make(map[string]Value, len(fields))
	for _, f := range fields {
		values[f.Name] = f.Value
	}

	slots := make([]string, seg.maxPosition)
	for _, f := range seg.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		s, err := w.renderValue(seg.Name, f.Name, v)
		if err != nil {
			return "", err
		}
		slots[f.Position-1] = s
	}

	for len(slots) > 0 && slots[len(slots)-1] == "" {
		slots = slots[:len(slots)-1]
	}

	var b strings.Builder
	b.WriteString(seg.Abbreviation)
	for _, s := range slots {
		b.WriteString(w.sep.Element)
		b.WriteString(s)
	}
	b.WriteString(w.sep.Segment)
	b.WriteString(w.sep.Line)
	return b.String(), nil
}

func (w *Writer) renderValue(segName, fieldName string, v Value) (string, error) {
	if comp, ok := v.(Composite); ok {
		parts := make([]string, 0, len(comp))
		for _, sub := range comp {
			if list, isList := sub.Value.(List); isList {
				for _, el := range list {
					s, err := renderScalar(el)
					if err != nil {
						return "", fmt.Errorf("segment %q composite %q: %w", segName, fieldName, err)
					}
					parts = append(parts, s)
				}
				continue
			}
			s, err := renderScalar(sub.Value)
			if err != nil {
				return "", fmt.Errorf("segment %q composite %q: %w", segName, fieldName, err)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, w.sep.Composite), nil
	}

	s, err := renderScalar(v)
	if err != nil {
		return "", fmt.Errorf("segment %q field %q: %w", segName, fieldName, err)
	}
	return s, nil
}

// renderScalar formats a scalar value for the wire. Floats always carry
// exactly two fractional digits so generated files are reproducible
// byte for byte.
func renderScalar(v Value) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64), nil
	case decimal.Decimal:
		return t.StringFixed(2), nil
	case List:
		return "", fmt.Errorf("list values are only valid inside composite fields")
	default:
		return "", fmt.Errorf("unsupported field value type %T", v)
	}
}
