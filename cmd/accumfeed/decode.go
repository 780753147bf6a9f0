package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/payerlink/accumfeed/internal/db"
	"github.com/payerlink/accumfeed/internal/decode"
	"github.com/payerlink/accumfeed/internal/exitcode"
	"github.com/payerlink/accumfeed/internal/export"
	"github.com/payerlink/accumfeed/internal/layout"
	"github.com/payerlink/accumfeed/internal/logging"
	"github.com/payerlink/accumfeed/internal/model"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a payer response file into accumulator ledger entries",
	RunE:  runDecode,
}

func init() {
	f := decodeCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to fixed-width response file (required)")
	f.StringVar(&cfg.LayoutPath, "layout", "", "Path to layout table CSV (required)")
	f.StringVar(&cfg.ExportPath, "export", "", "Also export decoded entries to this Parquet file")
	f.BoolVar(&cfg.Force, "force", false, "Re-decode even if file SHA already loaded")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Decode and report without writing to the database")
	_ = decodeCmd.MarkFlagRequired("file")
	_ = decodeCmd.MarkFlagRequired("layout")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateDecodeWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	layoutFile, err := os.Open(cfg.LayoutPath)
	if err != nil {
		log.Error().Err(err).Msg("open layout failed")
		os.Exit(exitcode.SchemaError)
	}
	table, err := layout.LoadTable(layoutFile, cfg.LayoutColumns, layout.IndexUnknown)
	layoutFile.Close()
	if err != nil {
		log.Error().Err(err).Msg("layout compile failed")
		os.Exit(exitcode.SchemaError)
	}

	if cfg.DryRun {
		rows, res, err := decode.Rows(log, cfg.FilePath, table, uuid.New(), 0)
		if err != nil {
			log.Error().Err(err).Msg("decode failed")
			os.Exit(exitcode.DecodeError)
		}
		if cfg.ExportPath != "" {
			if err := writeExport(log, rows); err != nil {
				os.Exit(exitcode.DecodeError)
			}
		}
		fmt.Printf("Dry run: %d rows read, %d decoded, %d flagged (%.1fs)\n",
			res.RowsRead, res.RowsDecoded, res.RowsFlagged, res.Duration.Seconds())
		return nil
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := decode.Run(ctx, pool, log, cfg.FilePath, table, cfg.Force)
	if err != nil {
		if pe, ok := err.(*decode.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("decode failed")
			switch pe.Phase {
			case "preflight":
				os.Exit(exitcode.DecodeError)
			case "decode":
				os.Exit(exitcode.CopyError)
			default:
				os.Exit(exitcode.DecodeError)
			}
		}
		log.Error().Err(err).Msg("decode failed")
		os.Exit(exitcode.DecodeError)
	}

	// Export only after the ledger load succeeded, tagged with the same
	// batch and file IDs the load used.
	if cfg.ExportPath != "" {
		batchID, err := uuid.Parse(summary.DecodeBatchID)
		if err != nil {
			log.Error().Err(err).Msg("parquet export failed")
			os.Exit(exitcode.DecodeError)
		}
		rows, _, err := decode.Rows(log, cfg.FilePath, table, batchID, summary.ResponseFileID)
		if err != nil {
			log.Error().Err(err).Msg("parquet export failed")
			os.Exit(exitcode.DecodeError)
		}
		if err := writeExport(log, rows); err != nil {
			os.Exit(exitcode.DecodeError)
		}
	}

	fmt.Printf("Decode complete: %d rows read, %d in ledger, %d flagged (%.1fs)\n",
		summary.RowsRead, summary.RowsDecoded, summary.RowsFlagged, summary.DurationTotal.Seconds())
	return nil
}

func writeExport(log zerolog.Logger, rows []*model.LedgerRow) error {
	n, err := export.Write(cfg.ExportPath, rows)
	if err != nil {
		log.Error().Err(err).Msg("parquet export failed")
		return err
	}
	log.Info().Int("rows", n).Str("path", cfg.ExportPath).Msg("parquet export complete")
	return nil
}
