// Package accum normalizes decoded payer accumulator response records into
// signed ledger deltas and classifies their transmission status.
package accum

// Canonical field names used by payer accumulator layouts. The layout table
// for a given payer maps its fixed-width columns onto these names.
const (
	FieldTransmissionFileType      = "transmission_file_type"
	FieldTransactionResponseStatus = "transaction_response_status"
	FieldRejectCode                = "reject_code"
	FieldMemberID                  = "member_id"
	FieldDateOfService             = "date_of_service"

	fieldBalanceQualifier1 = "accumulator_balance_qualifier_1"
	fieldAppliedAmount1    = "accumulator_applied_amount_1"
	fieldActionCode1       = "action_code_1"
	fieldBalanceQualifier2 = "accumulator_balance_qualifier_2"
	fieldAppliedAmount2    = "accumulator_applied_amount_2"
	fieldActionCode2       = "action_code_2"
)

// Slot is one of the two accumulator positions a record may report.
type Slot struct {
	BalanceQualifier string // "04" deductible, "05" out-of-pocket
	AppliedAmount    string // implied-decimal, scale 2
	ActionCode       string // "+" or "-"
}

// Blank reports whether the slot carries no amount.
func (s Slot) Blank() bool {
	return s.AppliedAmount == ""
}

// RawRecord is one decoded fixed-width accumulator row.
type RawRecord struct {
	Slots         [2]Slot
	MemberID      string
	DateOfService string // YYYYMMDD

	// Response-file fields; empty on outbound-confirmation records.
	TransmissionFileType      string
	TransactionResponseStatus string
	RejectCode                string
}

// RecordFromFields builds a RawRecord from the named fields sliced out of a
// fixed-width row.
func RecordFromFields(fields map[string]string) RawRecord {
	return RawRecord{
		Slots: [2]Slot{
			{
				BalanceQualifier: fields[fieldBalanceQualifier1],
				AppliedAmount:    fields[fieldAppliedAmount1],
				ActionCode:       fields[fieldActionCode1],
			},
			{
				BalanceQualifier: fields[fieldBalanceQualifier2],
				AppliedAmount:    fields[fieldAppliedAmount2],
				ActionCode:       fields[fieldActionCode2],
			},
		},
		MemberID:                  fields[FieldMemberID],
		DateOfService:             fields[FieldDateOfService],
		TransmissionFileType:      fields[FieldTransmissionFileType],
		TransactionResponseStatus: fields[FieldTransactionResponseStatus],
		RejectCode:                fields[FieldRejectCode],
	}
}
