package model

// LedgerParquetRow mirrors the Parquet schema for analytics exports of
// decoded ledger entries.
type LedgerParquetRow struct {
	MemberID      string `parquet:"member_id,optional"`
	DateOfService string `parquet:"date_of_service,optional"`
	PlanYear      int32  `parquet:"plan_year"`

	DeductibleAppliedCents int64 `parquet:"deductible_applied_cents"`
	OOPAppliedCents        int64 `parquet:"oop_applied_cents"`

	TransmissionFileType string `parquet:"transmission_file_type"`
	Rejected             bool   `parquet:"rejected"`
	RejectionReason      string `parquet:"rejection_reason,optional"`
}

// ToParquetRow flattens a LedgerRow for export.
func (r *LedgerRow) ToParquetRow() LedgerParquetRow {
	p := LedgerParquetRow{
		DeductibleAppliedCents: r.DeductibleAppliedCents,
		OOPAppliedCents:        r.OOPAppliedCents,
		TransmissionFileType:   r.TransmissionFileType,
		Rejected:               r.Rejected,
	}
	if r.MemberID != nil {
		p.MemberID = *r.MemberID
	}
	if r.DateOfService != nil {
		p.DateOfService = *r.DateOfService
	}
	if r.PlanYear != nil {
		p.PlanYear = *r.PlanYear
	}
	if r.RejectionReason != nil {
		p.RejectionReason = *r.RejectionReason
	}
	return p
}
