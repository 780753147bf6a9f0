package x12

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LoopPrefix marks a request key as a repeating segment group rather than a
// single segment.
const LoopPrefix = "loop"

// ItemKind tags a request item as segment data or a loop.
type ItemKind int

const (
	SegmentItem ItemKind = iota
	LoopItem
)

// Request is one ordered encoding request: the segments and loops to emit,
// in emission order.
type Request []Item

// Item is a single request entry. A SegmentItem carries ordered field
// values; a LoopItem carries one child Request per repetition, whose keys
// resolve against the schema as "{loop key}_{child key}".
type Item struct {
	Kind   ItemKind
	Key    string
	Fields []FieldValue // SegmentItem only
	Loops  []Request    // LoopItem only
}

// FieldValue is one ordered name/value pair of a segment or composite.
type FieldValue struct {
	Name  string
	Value Value
}

// Value is a renderable field value: nil, string, int64, float64,
// decimal.Decimal, Composite, or (inside composites) List.
type Value any

// Composite is a field value packing ordered sub-values, joined on the wire
// by the composite separator.
type Composite []FieldValue

// List is an ordered sub-value sequence; valid only inside a Composite.
type List []Value

// SegmentData builds a segment request item.
func SegmentData(key string, fields ...FieldValue) Item {
	return Item{Kind: SegmentItem, Key: key, Fields: fields}
}

// Loop builds a loop request item.
func Loop(key string, elements ...Request) Item {
	return Item{Kind: LoopItem, Key: key, Loops: elements}
}

// ParseRequest decodes an encoding request from JSON, preserving document
// order throughout: segment emission order, field order, and composite
// sub-value order all follow the source document. Object values are segment
// field maps; array values are loops and their keys must begin with "loop".
func ParseRequest(data []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := parseRequestBody(dec)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return req, nil
}

// parseRequestBody consumes the members of an already-opened request object
// through its closing brace. An object value is segment data even when the
// key carries the loop prefix (loop-qualified segment names may be addressed
// directly); an array value is a loop and requires the prefix.
func parseRequestBody(dec *json.Decoder) (Request, error) {
	var req Request
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return nil, err
		}

		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		d, ok := tok.(json.Delim)
		if !ok {
			return nil, fmt.Errorf("key %q: want a segment object or loop array, got %v", key, tok)
		}

		switch d {
		case '[':
			if !strings.HasPrefix(key, LoopPrefix) {
				return nil, fmt.Errorf("key %q holds an array but does not begin with %q", key, LoopPrefix)
			}
			var elems []Request
			for dec.More() {
				if err := expectDelim(dec, '{'); err != nil {
					return nil, fmt.Errorf("loop %q element: %w", key, err)
				}
				child, err := parseRequestBody(dec)
				if err != nil {
					return nil, fmt.Errorf("loop %q: %w", key, err)
				}
				elems = append(elems, child)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return nil, err
			}
			req = append(req, Loop(key, elems...))
		case '{':
			fields, err := parseFields(dec, key)
			if err != nil {
				return nil, err
			}
			req = append(req, SegmentData(key, fields...))
		default:
			return nil, fmt.Errorf("key %q: unexpected %v", key, d)
		}
	}
	if _, err := dec.Token(); err != nil { // closing }
		return nil, err
	}
	return req, nil
}

// parseFields consumes the members of an already-opened segment object.
func parseFields(dec *json.Decoder, segKey string) ([]FieldValue, error) {
	var fields []FieldValue
	for dec.More() {
		name, err := objectKey(dec)
		if err != nil {
			return nil, err
		}
		v, err := parseFieldValue(dec, segKey, name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldValue{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil { // closing }
		return nil, err
	}
	return fields, nil
}

// parseFieldValue handles a segment field: a scalar or a composite object.
func parseFieldValue(dec *json.Decoder, segKey, name string) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseComposite(dec, segKey, name)
		case '[':
			return nil, fmt.Errorf("segment %q field %q: arrays are only valid inside composite fields", segKey, name)
		}
		return nil, fmt.Errorf("segment %q field %q: unexpected %v", segKey, name, t)
	default:
		return scalarValue(tok, segKey, name)
	}
}

// parseComposite consumes an already-opened composite object. Sub-values are
// scalars or arrays of scalars.
func parseComposite(dec *json.Decoder, segKey, name string) (Composite, error) {
	var comp Composite
	for dec.More() {
		sub, err := objectKey(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok {
			if d != '[' {
				return nil, fmt.Errorf("segment %q composite %q sub-value %q: nested objects are not supported", segKey, name, sub)
			}
			var list List
			for dec.More() {
				el, err := dec.Token()
				if err != nil {
					return nil, err
				}
				if _, isDelim := el.(json.Delim); isDelim {
					return nil, fmt.Errorf("segment %q composite %q sub-value %q: list elements must be scalars", segKey, name, sub)
				}
				v, err := scalarValue(el, segKey, name)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return nil, err
			}
			comp = append(comp, FieldValue{Name: sub, Value: list})
			continue
		}
		v, err := scalarValue(tok, segKey, name)
		if err != nil {
			return nil, err
		}
		comp = append(comp, FieldValue{Name: sub, Value: v})
	}
	if _, err := dec.Token(); err != nil { // closing }
		return nil, err
	}
	return comp, nil
}

// scalarValue maps a JSON scalar token onto a Value. Integer-looking numbers
// stay integers; anything with a fraction or exponent becomes float64 so the
// writer's two-decimal rule applies.
func scalarValue(tok json.Token, segKey, name string) (Value, error) {
	switch t := tok.(type) {
	case string:
		return t, nil
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			n, err := t.Int64()
			if err == nil {
				return n, nil
			}
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("segment %q field %q: number %q: %w", segKey, name, s, err)
		}
		return f, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("segment %q field %q: unsupported value %v", segKey, name, tok)
	}
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("want an object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("want %q, got %v", want, tok)
	}
	return nil
}
