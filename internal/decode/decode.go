package decode

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/payerlink/accumfeed/internal/accum"
	"github.com/payerlink/accumfeed/internal/db"
	"github.com/payerlink/accumfeed/internal/layout"
	"github.com/payerlink/accumfeed/internal/model"
)

const rowBufferSize = 1024

// headerTrailerTypes are envelope record markers that carry no accumulator
// data and are skipped during decode.
var headerTrailerTypes = map[string]bool{
	"HD": true,
	"TR": true,
}

// Result holds metrics from the decode phase.
type Result struct {
	RowsRead    int64
	RowsDecoded int64
	RowsFlagged int64
	Duration    time.Duration
}

// buildRow decodes one fixed-width line into a DB-ready ledger row.
// Payer-flagged rows are kept with their rejection reason and best-effort
// amounts; a non-flagged row that cannot be normalized aborts the decode,
// since coercing it to a zero entry would misreport a real balance change.
func buildRow(table layout.Table, batchID uuid.UUID, responseFileID, rowNum int64, line string) (*model.LedgerRow, error) {
	fields := table.Slice(line)
	rec := accum.RecordFromFields(fields)

	row := &model.LedgerRow{
		DecodeBatchID:             batchID,
		ResponseFileID:            responseFileID,
		SourceRowNumber:           rowNum,
		SourceRowHash:             RowHash(rowNum, line),
		MemberID:                  optStr(rec.MemberID),
		DateOfService:             optStr(rec.DateOfService),
		TransmissionFileType:      rec.TransmissionFileType,
		TransactionResponseStatus: optStr(rec.TransactionResponseStatus),
		RejectCode:                optStr(rec.RejectCode),
	}

	rejected, reason := accum.Status(rec.TransmissionFileType, rec.TransactionResponseStatus, rec.RejectCode)
	row.Rejected = rejected
	row.RejectionReason = optStr(reason)

	entry, err := accum.Normalize(rec)
	if err != nil {
		if rejected {
			// Flagged responses often echo no usable amounts; keep the
			// flag and zero deltas.
			return row, nil
		}
		return nil, fmt.Errorf("row %d: %w", rowNum, err)
	}

	row.DeductibleAppliedCents = entry.DeductibleAppliedCents
	row.OOPAppliedCents = entry.OOPAppliedCents
	year := int32(entry.PlanYear)
	row.PlanYear = &year
	return row, nil
}

// produceRows reads the response file line by line, slices and normalizes
// each data record, and pushes the resulting ledger rows onto ch. It returns
// when the file is exhausted, a row fails to build, or ctx is cancelled; the
// ctx arm is the only exit path once the channel backs up with no consumer.
func produceRows(ctx context.Context, log zerolog.Logger, filePath string, batchID uuid.UUID, responseFileID int64, table layout.Table, ch chan<- *model.LedgerRow) (rowsRead, rowsFlagged int64, err error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("decode open: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rowNum int64
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rowNum++

		fields := table.Slice(line)
		if headerTrailerTypes[fields[accum.FieldTransmissionFileType]] {
			continue
		}
		rowsRead++

		row, buildErr := buildRow(table, batchID, responseFileID, rowNum, line)
		if buildErr != nil {
			return rowsRead, rowsFlagged, buildErr
		}
		if row.Rejected {
			rowsFlagged++
			log.Warn().
				Int64("row", rowNum).
				Str("reject_code", strDeref(row.RejectCode)).
				Str("reason", strDeref(row.RejectionReason)).
				Msg("payer flagged record")
		}

		select {
		case ch <- row:
		case <-ctx.Done():
			return rowsRead, rowsFlagged, ctx.Err()
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return rowsRead, rowsFlagged, fmt.Errorf("read response file at row %d: %w", rowNum, scanErr)
	}
	return rowsRead, rowsFlagged, nil
}

// Decode streams the response file through the layout slicer and the
// accumulator normalizer, COPY-loading ledger rows via a channel-backed
// CopyFromSource.
func Decode(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, pf *PreflightResult, table layout.Table) (*Result, error) {
	start := time.Now()

	// A COPY failure mid-file leaves the producer blocked on a full channel
	// with nothing draining it; cancelling here gives it an exit path.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan *model.LedgerRow, rowBufferSize)
	errCh := make(chan error, 1)

	var rowsRead, rowsFlagged int64
	go func() {
		defer close(ch)
		var prodErr error
		rowsRead, rowsFlagged, prodErr = produceRows(ctx, log, pf.FilePath, pf.DecodeBatchID, pf.ResponseFileID, table, ch)
		errCh <- prodErr
	}()

	// Consumer: COPY from channel into the ledger table
	source := db.NewChannelSource(ch)
	rowsDecoded, copyErr := pool.CopyFrom(ctx,
		pgx.Identifier{"accum", "ledger_entries"},
		model.LedgerColumns(),
		source,
	)

	// Unblock the producer before waiting on it, then report the COPY error
	// first: a cancelled producer is a symptom of the failed COPY, not the
	// cause.
	cancel()
	prodErr := <-errCh
	if copyErr != nil {
		return nil, fmt.Errorf("decode copy: %w", copyErr)
	}
	if prodErr != nil {
		return nil, fmt.Errorf("decode producer: %w", prodErr)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_read", rowsRead).
		Int64("rows_decoded", rowsDecoded).
		Int64("rows_flagged", rowsFlagged).
		Str("duration", dur.String()).
		Msg("decode complete")

	return &Result{
		RowsRead:    rowsRead,
		RowsDecoded: rowsDecoded,
		RowsFlagged: rowsFlagged,
		Duration:    dur,
	}, nil
}

// Rows decodes the response file entirely in memory, without a database.
// Used by dry runs and the parquet export path; responseFileID may be zero
// when no file record exists yet.
func Rows(log zerolog.Logger, filePath string, table layout.Table, batchID uuid.UUID, responseFileID int64) ([]*model.LedgerRow, *Result, error) {
	start := time.Now()

	var rows []*model.LedgerRow
	ch := make(chan *model.LedgerRow)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for row := range ch {
			rows = append(rows, row)
		}
	}()

	rowsRead, rowsFlagged, err := produceRows(context.Background(), log, filePath, batchID, responseFileID, table, ch)
	close(ch)
	<-done
	if err != nil {
		return nil, nil, err
	}

	return rows, &Result{
		RowsRead:    rowsRead,
		RowsDecoded: int64(len(rows)),
		RowsFlagged: rowsFlagged,
		Duration:    time.Since(start),
	}, nil
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
