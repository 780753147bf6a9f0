package accum

import (
	"fmt"

	"github.com/payerlink/accumfeed/internal/fixedpoint"
)

// Entry is one normalized accumulator ledger delta. Amounts are signed minor
// currency units applied against the member's plan-year balances.
type Entry struct {
	DeductibleAppliedCents int64
	OOPAppliedCents        int64
	PlanYear               int
}

// Balance qualifiers recognized on accumulator records.
const (
	qualifierDeductible = "04"
	qualifierOOP        = "05"
)

// Normalize converts a record's two qualifier/amount/action slots into signed
// deductible and out-of-pocket deltas. Blank slots contribute nothing and a
// slot with an unrecognized qualifier is skipped, but a record where no slot
// maps to a known bucket cannot be categorized and is an error rather than a
// silent zero entry.
func Normalize(rec RawRecord) (Entry, error) {
	var e Entry
	matched := false

	for i, slot := range rec.Slots {
		if slot.Blank() {
			continue
		}

		cents, err := fixedpoint.Scale2.Cents(slot.AppliedAmount)
		if err != nil {
			return Entry{}, fmt.Errorf("slot %d applied amount: %w", i+1, err)
		}

		switch slot.ActionCode {
		case "+":
		case "-":
			cents = -cents
		default:
			return Entry{}, fmt.Errorf("slot %d action code %q: want + or -", i+1, slot.ActionCode)
		}

		switch slot.BalanceQualifier {
		case qualifierDeductible:
			e.DeductibleAppliedCents += cents
			matched = true
		case qualifierOOP:
			e.OOPAppliedCents += cents
			matched = true
		}
	}

	if !matched {
		return Entry{}, fmt.Errorf("record for member %q has no deductible or out-of-pocket qualifier", rec.MemberID)
	}

	year, err := fixedpoint.PlanYear(rec.DateOfService)
	if err != nil {
		return Entry{}, err
	}
	e.PlanYear = year
	return e, nil
}
