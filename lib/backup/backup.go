// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package backup produces escrow copies of keystore records. An export is
// the record's JSON — address, sealed envelope, creation time — encrypted
// to one or more age x25519 recipients and base64-encoded for storage
// wherever the operator keeps escrow material.
//
// The envelope inside the record stays sealed: an escrow holder needs
// both the age private key and the wallet password to reach the account
// secret. Export is strictly read-only; there is no restore path here,
// because records are immutable and re-importing is an operator decision,
// not an engine operation.
package backup

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/custodia-foundation/custodia/lib/keystore"
	"github.com/custodia-foundation/custodia/lib/secret"
)

// EscrowKeypair holds an age x25519 keypair for escrow. The private key
// lives in a guarded buffer; the public key is plain text, safe to embed
// in configuration.
type EscrowKeypair struct {
	PrivateKey *secret.Buffer
	PublicKey  string
}

// Close releases the private key memory. Idempotent.
func (k *EscrowKeypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateEscrowKeypair generates a new age x25519 keypair. The caller
// must Close the returned keypair.
func GenerateEscrowKeypair() (*EscrowKeypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("backup: generating escrow keypair: %w", err)
	}

	// Move the private key into guarded memory immediately. The
	// intermediate string is heap-allocated and GC'd — unavoidable with
	// the age API; the buffer is the durable copy.
	privateKey, err := secret.FromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("backup: protecting escrow key: %w", err)
	}

	return &EscrowKeypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// ParseRecipient validates an age public key string before it is used or
// stored in configuration.
func ParseRecipient(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("backup: invalid escrow recipient: %w", err)
	}
	return nil
}

// ExportRecord encrypts a keystore record to the given recipients and
// returns the base64 ciphertext. At least one recipient is required.
func ExportRecord(record *keystore.Record, recipientKeys []string) (string, error) {
	if len(recipientKeys) == 0 {
		return "", fmt.Errorf("backup: at least one escrow recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return "", fmt.Errorf("backup: parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("backup: encoding record: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return "", fmt.Errorf("backup: creating encryptor: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		return "", fmt.Errorf("backup: encrypting record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("backup: finalizing encryption: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// OpenExport decrypts an export with the escrow private key and parses
// the record. For operator inspection of escrowed material — the record's
// own envelope remains sealed under the wallet password.
func OpenExport(export string, privateKey *secret.Buffer) (*keystore.Record, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("backup: parsing escrow key: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(export)
	if err != nil {
		return nil, fmt.Errorf("backup: decoding export: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(raw), identity)
	if err != nil {
		return nil, fmt.Errorf("backup: decrypting export: %w", err)
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("backup: reading decrypted export: %w", err)
	}

	var record keystore.Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("backup: parsing exported record: %w", err)
	}
	return &record, nil
}
