package model

import "time"

// DecodeSummary captures metrics from a single response-file decode run.
type DecodeSummary struct {
	FilePath       string
	FileSHA256     string
	ResponseFileID int64
	DecodeBatchID  string

	RowsRead    int64 // non-blank data rows seen
	RowsDecoded int64 // rows loaded into the ledger
	RowsFlagged int64 // rows the payer flagged for review

	DurationDecode   time.Duration
	DurationFinalize time.Duration
	DurationTotal    time.Duration
}
