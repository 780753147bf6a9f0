package decode

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/payerlink/accumfeed/internal/layout"
	"github.com/payerlink/accumfeed/internal/model"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full decode pipeline: preflight → decode → finalize.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, filePath string, table layout.Table, force bool) (*model.DecodeSummary, error) {
	totalStart := time.Now()

	// Phase 1: Preflight
	log.Info().Str("file", filePath).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, filePath, force)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Int64("response_file_id", pf.ResponseFileID).
			Str("sha256", pf.FileSHA256).
			Msg("file already decoded, skipping (use --force to re-decode)")
		return &model.DecodeSummary{
			FilePath:       pf.FilePath,
			FileSHA256:     pf.FileSHA256,
			ResponseFileID: pf.ResponseFileID,
			DecodeBatchID:  pf.DecodeBatchID.String(),
			DurationTotal:  time.Since(totalStart),
		}, nil
	}

	// Phase 2: Decode
	log.Info().Msg("starting decode")
	if err := UpdateStatus(ctx, pool, pf.ResponseFileID, "decoding"); err != nil {
		return nil, &PipelineError{Phase: "decode", Err: err}
	}

	res, err := Decode(ctx, pool, log, pf, table)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.ResponseFileID, "failed")
		if cleanupErr := Cleanup(ctx, pool, log, pf.DecodeBatchID); cleanupErr != nil {
			log.Warn().Err(cleanupErr).Msg("batch cleanup failed (non-fatal)")
		}
		return nil, &PipelineError{Phase: "decode", Err: err}
	}

	// Phase 3: Finalize
	log.Info().Msg("finalizing")
	finalizeDur, err := Finalize(ctx, pool, log, pf.ResponseFileID, res)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.ResponseFileID, "failed")
		return nil, &PipelineError{Phase: "finalize", Err: err}
	}

	summary := &model.DecodeSummary{
		FilePath:         pf.FilePath,
		FileSHA256:       pf.FileSHA256,
		ResponseFileID:   pf.ResponseFileID,
		DecodeBatchID:    pf.DecodeBatchID.String(),
		RowsRead:         res.RowsRead,
		RowsDecoded:      res.RowsDecoded,
		RowsFlagged:      res.RowsFlagged,
		DurationDecode:   res.Duration,
		DurationFinalize: finalizeDur,
		DurationTotal:    time.Since(totalStart),
	}

	log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_decoded", summary.RowsDecoded).
		Int64("rows_flagged", summary.RowsFlagged).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("decode pipeline complete")

	return summary, nil
}
