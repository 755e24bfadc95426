// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/custodia-foundation/custodia/lib/envelope"
	"github.com/custodia-foundation/custodia/lib/keystore"
	"github.com/custodia-foundation/custodia/lib/secret"
)

func testRecord(t *testing.T) *keystore.Record {
	t.Helper()
	password, err := secret.FromBytes([]byte("pw"))
	if err != nil {
		t.Fatalf("password buffer: %v", err)
	}
	defer password.Close()

	env, err := envelope.Seal([]byte("not a real key"), password)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return &keystore.Record{
		Address:   "0x00000000000000000000000000000000000000aa",
		Envelope:  env,
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestExportOpenRoundTrip(t *testing.T) {
	keypair, err := GenerateEscrowKeypair()
	if err != nil {
		t.Fatalf("GenerateEscrowKeypair: %v", err)
	}
	defer keypair.Close()

	if !strings.HasPrefix(keypair.PublicKey, "age1") {
		t.Errorf("public key %q does not look like an age recipient", keypair.PublicKey)
	}

	record := testRecord(t)
	export, err := ExportRecord(record, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("ExportRecord: %v", err)
	}

	opened, err := OpenExport(export, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("OpenExport: %v", err)
	}
	if opened.Address != record.Address {
		t.Errorf("address = %q, want %q", opened.Address, record.Address)
	}
	if opened.Envelope != record.Envelope {
		t.Error("envelope did not survive the round trip")
	}
	if !opened.CreatedAt.Equal(record.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", opened.CreatedAt, record.CreatedAt)
	}
}

func TestExportRequiresRecipients(t *testing.T) {
	if _, err := ExportRecord(testRecord(t), nil); err == nil {
		t.Fatal("ExportRecord with no recipients succeeded, want error")
	}
}

func TestOpenExportWrongKey(t *testing.T) {
	sealer, err := GenerateEscrowKeypair()
	if err != nil {
		t.Fatalf("GenerateEscrowKeypair: %v", err)
	}
	defer sealer.Close()
	other, err := GenerateEscrowKeypair()
	if err != nil {
		t.Fatalf("GenerateEscrowKeypair: %v", err)
	}
	defer other.Close()

	export, err := ExportRecord(testRecord(t), []string{sealer.PublicKey})
	if err != nil {
		t.Fatalf("ExportRecord: %v", err)
	}

	if _, err := OpenExport(export, other.PrivateKey); err == nil {
		t.Fatal("OpenExport with wrong escrow key succeeded, want error")
	}
}

func TestParseRecipient(t *testing.T) {
	keypair, err := GenerateEscrowKeypair()
	if err != nil {
		t.Fatalf("GenerateEscrowKeypair: %v", err)
	}
	defer keypair.Close()

	if err := ParseRecipient(keypair.PublicKey); err != nil {
		t.Errorf("ParseRecipient(valid) = %v", err)
	}
	if err := ParseRecipient("age1notakey"); err == nil {
		t.Error("ParseRecipient accepted a bogus key")
	}
}
