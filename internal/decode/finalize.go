package decode

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	sqlq "github.com/payerlink/accumfeed/internal/sql"
)

// Finalize marks the response file decoded and records its row counts.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, responseFileID int64, res *Result) (time.Duration, error) {
	start := time.Now()

	_, err := pool.Exec(ctx, sqlq.FinalizeResponseFile,
		responseFileID, res.RowsRead, res.RowsDecoded, res.RowsFlagged)
	if err != nil {
		return 0, fmt.Errorf("finalize response file: %w", err)
	}

	log.Info().
		Int64("response_file_id", responseFileID).
		Int64("rows_decoded", res.RowsDecoded).
		Msg("response file finalized")

	return time.Since(start), nil
}

// Cleanup deletes ledger rows for the given batch after a failed run.
func Cleanup(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, batchID uuid.UUID) error {
	start := time.Now()

	tag, err := pool.Exec(ctx, sqlq.DeleteLedgerBatch, batchID)
	if err != nil {
		return err
	}

	log.Info().
		Int64("rows_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("ledger batch cleanup complete")

	return nil
}
