package decode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/payerlink/accumfeed/internal/layout"
	"github.com/payerlink/accumfeed/internal/model"
)

func loadFixtureTable(t *testing.T) layout.Table {
	t.Helper()
	f, err := os.Open("../../testdata/payer_layout.csv")
	if err != nil {
		t.Fatalf("open layout fixture: %v", err)
	}
	defer f.Close()
	table, err := layout.LoadTable(f, nil, layout.IndexUnknown)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	return table
}

func TestRows_Fixture(t *testing.T) {
	table := loadFixtureTable(t)
	log := zerolog.Nop()

	batchID := uuid.New()
	rows, res, err := Rows(log, "../../testdata/payer_response.txt", table, batchID, 42)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}

	// Header and trailer records are skipped.
	if res.RowsRead != 4 || res.RowsDecoded != 4 {
		t.Fatalf("got read=%d decoded=%d, want 4/4", res.RowsRead, res.RowsDecoded)
	}
	if res.RowsFlagged != 2 {
		t.Errorf("flagged = %d, want 2", res.RowsFlagged)
	}

	// Every row carries the batch and file IDs it was decoded under.
	for i, r := range rows {
		if r.DecodeBatchID != batchID || r.ResponseFileID != 42 {
			t.Errorf("row %d ids: batch=%v file=%d", i+1, r.DecodeBatchID, r.ResponseFileID)
		}
	}

	// Row 1: both buckets applied.
	r := rows[0]
	if *r.MemberID != "123456789" || r.Rejected {
		t.Errorf("row 1 unexpected: %+v", r)
	}
	if r.DeductibleAppliedCents != 1045 || r.OOPAppliedCents != 1000 {
		t.Errorf("row 1 amounts: ded=%d oop=%d", r.DeductibleAppliedCents, r.OOPAppliedCents)
	}
	if r.PlanYear == nil || *r.PlanYear != 2024 {
		t.Errorf("row 1 plan year: %v", r.PlanYear)
	}

	// Row 2: duplicate-record rejection keeps the echoed amount.
	r = rows[1]
	if !r.Rejected || r.RejectionReason == nil || *r.RejectionReason != "Duplicate Record" {
		t.Errorf("row 2 rejection: %+v", r)
	}
	if r.DeductibleAppliedCents != 2000 {
		t.Errorf("row 2 deductible = %d, want 2000", r.DeductibleAppliedCents)
	}

	// Row 3: negative single-slot OOP.
	r = rows[2]
	if r.OOPAppliedCents != -500 || r.DeductibleAppliedCents != 0 {
		t.Errorf("row 3 amounts: ded=%d oop=%d", r.DeductibleAppliedCents, r.OOPAppliedCents)
	}

	// Row 4: accepted acknowledgment, flagged with no reason and zero deltas.
	r = rows[3]
	if !r.Rejected || r.RejectionReason != nil {
		t.Errorf("row 4 rejection: %+v", r)
	}
	if r.DeductibleAppliedCents != 0 || r.OOPAppliedCents != 0 {
		t.Errorf("row 4 amounts should be zero: %+v", r)
	}
}

func TestRows_UnclassifiableRecordAborts(t *testing.T) {
	table := loadFixtureTable(t)
	log := zerolog.Nop()

	// A normal (non-response) record whose only slot has an unmapped
	// qualifier must abort the decode, not load as a zero entry.
	line := "DQ111222333030000001045+             20240315    "
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte(line+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Rows(log, path, table, uuid.New(), 0); err == nil {
		t.Fatal("expected error for unclassifiable record")
	}
}

func TestProduceRows_CancelUnblocks(t *testing.T) {
	table := loadFixtureTable(t)

	// No consumer and a one-slot channel: the producer fills the buffer and
	// blocks on the second row. Cancellation must be its way out, or a
	// failed COPY consumer would leave the whole decode hung.
	ch := make(chan *model.LedgerRow, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, _, err := produceRows(ctx, zerolog.Nop(), "../../testdata/payer_response.txt", uuid.New(), 1, table, ch)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not return after cancel")
	}
}

func TestRowHash_Stable(t *testing.T) {
	a := RowHash(7, "DQ123")
	b := RowHash(7, "DQ123")
	c := RowHash(8, "DQ123")
	if string(a) != string(b) {
		t.Error("hash not stable for identical input")
	}
	if string(a) == string(c) {
		t.Error("hash ignores row number")
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	os.WriteFile(path, []byte("hello"), 0644)
	sha, err := FileHash(path)
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	// sha256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if sha != want {
		t.Errorf("FileHash = %s, want %s", sha, want)
	}
}
