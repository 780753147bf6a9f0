package model

import "github.com/google/uuid"

// LedgerRow is the DB-ready representation of one decoded accumulator
// response record. Amounts are signed int64 cents.
type LedgerRow struct {
	DecodeBatchID   uuid.UUID
	ResponseFileID  int64
	SourceRowNumber int64
	SourceRowHash   []byte

	MemberID      *string
	DateOfService *string
	PlanYear      *int32

	DeductibleAppliedCents int64
	OOPAppliedCents        int64

	// Transmission outcome
	TransmissionFileType      string
	TransactionResponseStatus *string
	RejectCode                *string
	Rejected                  bool
	RejectionReason           *string
}

// LedgerColumns returns the ordered column names for COPY into
// accum.ledger_entries.
func LedgerColumns() []string {
	return []string{
		"decode_batch_id",
		"response_file_id",
		"source_row_number",
		"source_row_hash",
		"member_id",
		"date_of_service",
		"plan_year",
		"deductible_applied_cents",
		"oop_applied_cents",
		"transmission_file_type",
		"transaction_response_status",
		"reject_code",
		"rejected",
		"rejection_reason",
	}
}

// CopyValues returns the row values in the same order as LedgerColumns(),
// suitable for pgx CopyFromSource.
func (r *LedgerRow) CopyValues() []any {
	return []any{
		r.DecodeBatchID,
		r.ResponseFileID,
		r.SourceRowNumber,
		r.SourceRowHash,
		r.MemberID,
		r.DateOfService,
		r.PlanYear,
		r.DeductibleAppliedCents,
		r.OOPAppliedCents,
		r.TransmissionFileType,
		r.TransactionResponseStatus,
		r.RejectCode,
		r.Rejected,
		r.RejectionReason,
	}
}
