package accum

import (
	"strings"
	"testing"
)

func record(s1, s2 Slot) RawRecord {
	return RawRecord{
		Slots:         [2]Slot{s1, s2},
		MemberID:      "123456789",
		DateOfService: "20240315",
	}
}

func TestNormalize_BothBuckets(t *testing.T) {
	rec := record(
		Slot{BalanceQualifier: "04", AppliedAmount: "0000001045", ActionCode: "+"},
		Slot{BalanceQualifier: "05", AppliedAmount: "0000001000", ActionCode: "+"},
	)
	e, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.DeductibleAppliedCents != 1045 || e.OOPAppliedCents != 1000 {
		t.Errorf("got ded=%d oop=%d, want 1045/1000", e.DeductibleAppliedCents, e.OOPAppliedCents)
	}
	if e.PlanYear != 2024 {
		t.Errorf("plan year = %d, want 2024", e.PlanYear)
	}
}

func TestNormalize_NegativeActions(t *testing.T) {
	rec := record(
		Slot{BalanceQualifier: "04", AppliedAmount: "0000001045", ActionCode: "-"},
		Slot{BalanceQualifier: "05", AppliedAmount: "0000001000", ActionCode: "-"},
	)
	e, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.DeductibleAppliedCents != -1045 || e.OOPAppliedCents != -1000 {
		t.Errorf("got ded=%d oop=%d, want -1045/-1000", e.DeductibleAppliedCents, e.OOPAppliedCents)
	}
}

func TestNormalize_SingleSlotOOP(t *testing.T) {
	rec := record(
		Slot{BalanceQualifier: "05", AppliedAmount: "0000001045", ActionCode: "+"},
		Slot{},
	)
	e, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.DeductibleAppliedCents != 0 || e.OOPAppliedCents != 1045 {
		t.Errorf("got ded=%d oop=%d, want 0/1045", e.DeductibleAppliedCents, e.OOPAppliedCents)
	}
}

func TestNormalize_SameBucketBothSlots(t *testing.T) {
	rec := record(
		Slot{BalanceQualifier: "04", AppliedAmount: "0000000500", ActionCode: "+"},
		Slot{BalanceQualifier: "04", AppliedAmount: "0000000250", ActionCode: "-"},
	)
	e, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.DeductibleAppliedCents != 250 || e.OOPAppliedCents != 0 {
		t.Errorf("got ded=%d oop=%d, want 250/0", e.DeductibleAppliedCents, e.OOPAppliedCents)
	}
}

func TestNormalize_UnrecognizedQualifier(t *testing.T) {
	rec := record(
		Slot{BalanceQualifier: "03", AppliedAmount: "0000001045", ActionCode: "+"},
		Slot{},
	)
	_, err := Normalize(rec)
	if err == nil {
		t.Fatal("expected error for unclassifiable record")
	}
	if !strings.Contains(err.Error(), "123456789") {
		t.Errorf("error %q does not name the member", err)
	}
}

func TestNormalize_BothSlotsBlank(t *testing.T) {
	if _, err := Normalize(record(Slot{}, Slot{})); err == nil {
		t.Fatal("expected error for record with no amounts")
	}
}

func TestNormalize_BadAmount(t *testing.T) {
	rec := record(
		Slot{BalanceQualifier: "04", AppliedAmount: "00000X1045", ActionCode: "+"},
		Slot{},
	)
	if _, err := Normalize(rec); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestNormalize_BadActionCode(t *testing.T) {
	rec := record(
		Slot{BalanceQualifier: "04", AppliedAmount: "0000001045", ActionCode: "X"},
		Slot{},
	)
	if _, err := Normalize(rec); err == nil {
		t.Fatal("expected error for unknown action code")
	}
}

func TestRecordFromFields(t *testing.T) {
	fields := map[string]string{
		"transmission_file_type":          "DR",
		"transaction_response_status":     "E",
		"reject_code":                     "081",
		"member_id":                       "987654321",
		"date_of_service":                 "20240102",
		"accumulator_balance_qualifier_1": "04",
		"accumulator_applied_amount_1":    "0000002000",
		"action_code_1":                   "+",
		"accumulator_balance_qualifier_2": "05",
		"accumulator_applied_amount_2":    "0000001500",
		"action_code_2":                   "-",
	}
	rec := RecordFromFields(fields)
	if rec.TransmissionFileType != "DR" || rec.RejectCode != "081" {
		t.Errorf("unexpected response fields: %+v", rec)
	}
	if rec.Slots[0].BalanceQualifier != "04" || rec.Slots[1].ActionCode != "-" {
		t.Errorf("unexpected slots: %+v", rec.Slots)
	}
}
