// Package export writes decoded ledger entries to Parquet for analytics
// hand-off.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/payerlink/accumfeed/internal/model"
)

// Write creates a Parquet file at path containing the given ledger rows.
func Write(path string, rows []*model.LedgerRow) (int, error) {
	out := make([]model.LedgerParquetRow, len(rows))
	for i, r := range rows {
		out[i] = r.ToParquetRow()
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}

	w := parquet.NewGenericWriter[model.LedgerParquetRow](f)
	n, err := w.Write(out)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return n, fmt.Errorf("close parquet writer: %w", err)
	}
	return n, f.Close()
}

// Read loads a previously exported file. Mostly useful in tests and ad-hoc
// inspection.
func Read(path string) ([]model.LedgerParquetRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[model.LedgerParquetRow](pf)
	defer r.Close()

	rows := make([]model.LedgerParquetRow, r.NumRows())
	if len(rows) == 0 {
		return nil, nil
	}
	if _, err := r.Read(rows); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}
	return rows, nil
}
