// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := Open(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return ledger
}

func TestAppendAndList(t *testing.T) {
	ledger := openTestLedger(t)
	now := time.Now().UTC()

	entries := []Entry{
		{Identity: "u1", Address: "0xaa", Method: "direct", TxHash: "0x01", ClaimedAt: now},
		{Identity: "u1", Address: "0xaa", Method: "sponsored", TxHash: "0x02", ClaimedAt: now},
		{Identity: "u2", Address: "0xbb", Method: "direct", TxHash: "0x03", ClaimedAt: now},
	}
	for _, entry := range entries {
		if err := ledger.Append(entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := ledger.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(all))
	}
	if all[0].TxHash != "0x01" {
		t.Errorf("entries out of order: first is %q", all[0].TxHash)
	}

	byIdentity, err := ledger.List(Filter{Identity: "u1"})
	if err != nil {
		t.Fatalf("List by identity: %v", err)
	}
	if len(byIdentity) != 2 {
		t.Errorf("identity filter returned %d entries, want 2", len(byIdentity))
	}

	byBoth, err := ledger.List(Filter{Identity: "u1", Method: "sponsored"})
	if err != nil {
		t.Fatalf("List by both: %v", err)
	}
	if len(byBoth) != 1 || byBoth[0].TxHash != "0x02" {
		t.Errorf("combined filter = %+v", byBoth)
	}
}

func TestTotalByMethod(t *testing.T) {
	ledger := openTestLedger(t)
	for _, method := range []string{"direct", "direct", "sponsored"} {
		if err := ledger.Append(Entry{Identity: "u1", Method: method}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	totals, err := ledger.TotalByMethod()
	if err != nil {
		t.Fatalf("TotalByMethod: %v", err)
	}
	if totals["direct"] != 2 || totals["sponsored"] != 1 {
		t.Errorf("totals = %v", totals)
	}
}

func TestListEmpty(t *testing.T) {
	ledger := openTestLedger(t)
	entries, err := ledger.List(Filter{})
	if err != nil {
		t.Fatalf("List on absent file: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List returned %d entries, want 0", len(entries))
	}
}

func TestCorruptLedger(t *testing.T) {
	ledger := openTestLedger(t)
	if err := os.WriteFile(ledger.Path(), []byte("[broken"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ledger.List(Filter{}); !errors.Is(err, ErrCorruptLedger) {
		t.Fatalf("err = %v, want ErrCorruptLedger", err)
	}
}

func TestConcurrentAppends(t *testing.T) {
	ledger := openTestLedger(t)

	var group sync.WaitGroup
	appendErrors := make([]error, 8)
	for index := range appendErrors {
		group.Add(1)
		go func() {
			defer group.Done()
			appendErrors[index] = ledger.Append(Entry{Identity: "u1", Method: "direct"})
		}()
	}
	group.Wait()

	for _, err := range appendErrors {
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := ledger.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 8 {
		t.Errorf("ledger holds %d entries, want 8 (lost append)", len(entries))
	}
}
