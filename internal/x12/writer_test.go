package x12

import (
	"bytes"
	"strings"
	"testing"
)

func testSchema(t *testing.T, doc string) *FileSchema {
	t.Helper()
	fs, err := ParseSchema([]byte(doc))
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	return fs
}

func testWriter(t *testing.T, doc string) *Writer {
	t.Helper()
	w, err := NewWriter(testSchema(t, doc), DefaultSeparators)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return w
}

func generate(t *testing.T, w *Writer, req Request) string {
	t.Helper()
	var buf bytes.Buffer
	if err := w.Generate(req, &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return buf.String()
}

func TestGenerate_TrailingFieldTrimming(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {"interchange_control_header": {
		"abbreviation": "ISA",
		"properties": {"authorization_qualifier": {}, "authorization_information": {}, "security_qualifier": {}}
	}}}}`)

	req := Request{SegmentData("interchange_control_header",
		FieldValue{Name: "authorization_qualifier", Value: "00"},
	)}
	if got := generate(t, w, req); got != "ISA*00~\n" {
		t.Errorf("got %q, want %q", got, "ISA*00~\n")
	}
}

func TestGenerate_EmptyMiddlePositionKept(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {"s": {
		"abbreviation": "NM1",
		"properties": {"a": {}, "b": {}, "c": {}}
	}}}}`)

	req := Request{SegmentData("s",
		FieldValue{Name: "a", Value: "41"},
		FieldValue{Name: "c", Value: "Z"},
	)}
	if got := generate(t, w, req); got != "NM1*41**Z~\n" {
		t.Errorf("got %q, want %q", got, "NM1*41**Z~\n")
	}
}

func TestGenerate_LoopExpansion(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {"loop_1000A_submitter_name": {
		"abbreviation": "NM1",
		"properties": {"entity_identifier_code": {}}
	}}}}`)

	req := Request{Loop("loop_1000A",
		Request{SegmentData("submitter_name",
			FieldValue{Name: "entity_identifier_code", Value: int64(41)},
		)},
	)}
	if got := generate(t, w, req); got != "NM1*41~\n" {
		t.Errorf("got %q, want %q", got, "NM1*41~\n")
	}
}

func TestGenerate_NestedLoops(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {
		"loop_2000_loop_2010_member_name": {
			"abbreviation": "NM1",
			"properties": {"id": {}}
		}
	}}}`)

	req := Request{Loop("loop_2000",
		Request{Loop("loop_2010",
			Request{SegmentData("member_name", FieldValue{Name: "id", Value: "IL"})},
			Request{SegmentData("member_name", FieldValue{Name: "id", Value: "QC"})},
		)},
	)}
	if got := generate(t, w, req); got != "NM1*IL~\nNM1*QC~\n" {
		t.Errorf("got %q", got)
	}
}

func TestGenerate_UnknownSegment(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {"known": {"abbreviation": "KN"}}}}`)

	err := w.Generate(Request{SegmentData("mistyped_segment")}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for unknown segment key")
	}
	if !strings.Contains(err.Error(), "mistyped_segment") {
		t.Errorf("error %q does not name the unknown key", err)
	}
}

func TestGenerate_UnknownSegmentEmitsNothing(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {"known": {
		"abbreviation": "KN", "properties": {"a": {}}
	}}}}`)

	var buf bytes.Buffer
	err := w.Generate(Request{
		SegmentData("known", FieldValue{Name: "a", Value: "1"}),
		SegmentData("bogus"),
	}, &buf)
	if err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("partial output written on error: %q", buf.String())
	}
}

func TestGenerate_CompositeField(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {"service_line": {
		"abbreviation": "SV1",
		"properties": {"procedure": {}, "charge": {}}
	}}}}`)

	req := Request{SegmentData("service_line",
		FieldValue{Name: "procedure", Value: Composite{
			{Name: "qualifier", Value: "HC"},
			{Name: "code", Value: "99213"},
			{Name: "modifiers", Value: List{"25", "59"}},
		}},
		FieldValue{Name: "charge", Value: 125.5},
	)}
	want := "SV1*HC:99213:25:59*125.50~\n"
	if got := generate(t, w, req); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerate_FloatAlwaysTwoDecimals(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {"amt": {
		"abbreviation": "AMT", "properties": {"amount": {}}
	}}}}`)

	cases := []struct {
		v    float64
		want string
	}{
		{200.0, "AMT*200.00~\n"},
		{0.5, "AMT*0.50~\n"},
		{1234.567, "AMT*1234.57~\n"},
	}
	for _, tc := range cases {
		req := Request{SegmentData("amt", FieldValue{Name: "amount", Value: tc.v})}
		if got := generate(t, w, req); got != tc.want {
			t.Errorf("float %v: got %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestGenerate_ExtraDataFieldsIgnored(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {"s": {
		"abbreviation": "ST", "properties": {"a": {}}
	}}}}`)

	req := Request{SegmentData("s",
		FieldValue{Name: "a", Value: "837"},
		FieldValue{Name: "not_in_schema", Value: "x"},
	)}
	if got := generate(t, w, req); got != "ST*837~\n" {
		t.Errorf("got %q", got)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	w := testWriter(t, `{"$defs": {"segments": {
		"header": {"abbreviation": "ISA", "properties": {"a": {}, "b": {}}},
		"loop_1000A_submitter_name": {"abbreviation": "NM1", "properties": {"code": {}}}
	}}}`)

	req := Request{
		SegmentData("header",
			FieldValue{Name: "a", Value: "00"},
			FieldValue{Name: "b", Value: 12.5},
		),
		Loop("loop_1000A",
			Request{SegmentData("submitter_name", FieldValue{Name: "code", Value: int64(41)})},
		),
	}

	first := generate(t, w, req)
	second := generate(t, w, req)
	if first != second {
		t.Errorf("output differs across runs:\n%q\n%q", first, second)
	}
}

func TestSeparators_Validate(t *testing.T) {
	if err := DefaultSeparators.Validate(); err != nil {
		t.Errorf("default separators invalid: %v", err)
	}

	bad := []Separators{
		{Element: "*", Composite: "*", Segment: "~", Line: "\n"}, // collision
		{Element: "**", Composite: ":", Segment: "~", Line: "\n"},
		{Element: "", Composite: ":", Segment: "~", Line: "\n"},
	}
	for i, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestNewWriter_InvalidSeparators(t *testing.T) {
	fs := testSchema(t, `{"$defs": {"segments": {"s": {"abbreviation": "AA"}}}}`)
	if _, err := NewWriter(fs, Separators{Element: "*", Composite: "*", Segment: "~", Line: "\n"}); err == nil {
		t.Fatal("expected error for colliding separators")
	}
}
