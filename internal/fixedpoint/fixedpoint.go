// Package fixedpoint decodes the implied-decimal numeric fields used by payer
// accumulator interchange files. The wire format writes no decimal point; the
// field's type dictates how many trailing digits are fractional.
package fixedpoint

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Converter decodes implied-decimal digit strings at a fixed scale.
type Converter struct {
	scale int32
}

// New returns a Converter with the given number of implied fractional digits.
func New(scale int) Converter {
	return Converter{scale: int32(scale)}
}

// Scale2 and Scale3 cover the field types observed in payer layouts
// (dollar amounts and drug quantities respectively).
var (
	Scale2 = New(2)
	Scale3 = New(3)
)

// Convert decodes raw as a fixed-point number with the converter's implied
// scale, e.g. "20000" at scale 2 is 200.00. The result is exact; no float
// arithmetic is involved. raw must be decimal digits only — signs are carried
// out of band by the record's action code.
func (c Converter) Convert(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("implied-decimal field is empty")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return decimal.Decimal{}, fmt.Errorf("implied-decimal field %q: non-numeric content", raw)
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("implied-decimal field %q: %w", raw, err)
	}
	return decimal.New(n, -c.scale), nil
}

// ConvertInt decodes an already-numeric value at the converter's scale.
func (c Converter) ConvertInt(n int64) decimal.Decimal {
	return decimal.New(n, -c.scale)
}

// Cents decodes raw and returns the value in minor currency units.
// Only meaningful at scale 2.
func (c Converter) Cents(raw string) (int64, error) {
	d, err := c.Convert(raw)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).IntPart(), nil
}

// String renders d with exactly the converter's number of fractional digits.
func (c Converter) String(d decimal.Decimal) string {
	return d.StringFixed(c.scale)
}

// PlanYear extracts the plan year from an 8-character YYYYMMDD date of
// service. The month and day portions are required to be numeric but are not
// otherwise validated; the payer's own edits own calendar correctness.
func PlanYear(dateOfService string) (int, error) {
	if len(dateOfService) != 8 {
		return 0, fmt.Errorf("date of service %q: want 8 characters (YYYYMMDD)", dateOfService)
	}
	for _, r := range dateOfService {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("date of service %q: non-numeric content", dateOfService)
		}
	}
	year, err := strconv.Atoi(dateOfService[:4])
	if err != nil {
		return 0, fmt.Errorf("date of service %q: %w", dateOfService, err)
	}
	return year, nil
}
