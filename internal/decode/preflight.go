package decode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	sqlq "github.com/payerlink/accumfeed/internal/sql"
)

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	FilePath   string
	FileSHA256 string
	FileSize   int64
	// ResponseFileID is the DB primary key for this response file, inserted
	// or looked up by SHA-256.
	ResponseFileID int64
	// DecodeBatchID is a freshly generated UUIDv4 tagging every ledger row
	// of this run, used for cleanup of failed runs.
	DecodeBatchID uuid.UUID
	// AlreadyLoaded is true when the file's SHA already decoded successfully
	// and force mode is off, signaling the pipeline can skip this file.
	AlreadyLoaded bool
}

// Preflight hashes the file and registers it, detecting re-runs by SHA.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, filePath string, force bool) (*PreflightResult, error) {
	sha, err := FileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	var (
		fileID int64
		status string
	)
	err = pool.QueryRow(ctx, sqlq.RegisterResponseFile,
		filepath.Base(filePath), sha, stat.Size(),
	).Scan(&fileID, &status)
	if err != nil {
		return nil, fmt.Errorf("preflight register response file: %w", err)
	}

	pf := &PreflightResult{
		FilePath:       filePath,
		FileSHA256:     sha,
		FileSize:       stat.Size(),
		ResponseFileID: fileID,
		DecodeBatchID:  uuid.New(),
		AlreadyLoaded:  status == "decoded" && !force,
	}

	log.Info().
		Int64("response_file_id", fileID).
		Str("sha256", sha).
		Str("status", status).
		Bool("already_loaded", pf.AlreadyLoaded).
		Msg("preflight complete")

	return pf, nil
}

// UpdateStatus updates the response file status.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, responseFileID int64, status string) error {
	_, err := pool.Exec(ctx, sqlq.UpdateResponseFileStatus, responseFileID, status)
	return err
}
