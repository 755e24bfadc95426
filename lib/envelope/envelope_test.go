// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/custodia-foundation/custodia/lib/secret"
)

func testPassword(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.FromBytes([]byte(value))
	if err != nil {
		t.Fatalf("building password buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

func TestSealOpenRoundTrip(t *testing.T) {
	password := testPassword(t, "correct-horse")
	plaintext := []byte{0x01, 0x02, 0xfe, 0xff, 0x00, 0x42}

	env, err := Seal(append([]byte(nil), plaintext...), password)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	opened, err := Open(env, password)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opened.Close()

	if !bytes.Equal(opened.Bytes(), plaintext) {
		t.Errorf("Open returned %x, want %x", opened.Bytes(), plaintext)
	}
}

func TestOpenWrongPassword(t *testing.T) {
	sealer := testPassword(t, "correct-horse")
	opener := testPassword(t, "wrong-horse")

	env, err := Seal([]byte("secret key material"), sealer)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := Open(env, opener); !errors.Is(err, ErrAuthFailure) {
		t.Fatalf("Open with wrong password: err = %v, want ErrAuthFailure", err)
	}
}

func TestSealIsNonDeterministic(t *testing.T) {
	password := testPassword(t, "correct-horse")
	plaintext := []byte("same secret both times")

	first, err := Seal(append([]byte(nil), plaintext...), password)
	if err != nil {
		t.Fatalf("first Seal: %v", err)
	}
	second, err := Seal(append([]byte(nil), plaintext...), password)
	if err != nil {
		t.Fatalf("second Seal: %v", err)
	}

	if first.Salt == second.Salt {
		t.Error("two seals produced the same salt")
	}
	if first.IV == second.IV {
		t.Error("two seals produced the same IV")
	}
	if first.Ciphertext == second.Ciphertext {
		t.Error("two seals produced the same ciphertext")
	}
}

func TestOpenTamperedEnvelope(t *testing.T) {
	password := testPassword(t, "correct-horse")

	env, err := Seal([]byte("secret key material"), password)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e *Envelope)
	}{
		{"flipped ciphertext bit", func(e *Envelope) {
			raw, _ := hex.DecodeString(e.Ciphertext)
			raw[0] ^= 0x01
			e.Ciphertext = hex.EncodeToString(raw)
		}},
		{"flipped tag bit", func(e *Envelope) {
			raw, _ := hex.DecodeString(e.AuthTag)
			raw[0] ^= 0x01
			e.AuthTag = hex.EncodeToString(raw)
		}},
		{"truncated salt", func(e *Envelope) { e.Salt = e.Salt[:16] }},
		{"non-hex iv", func(e *Envelope) { e.IV = "zz" + e.IV[2:] }},
		{"empty auth tag", func(e *Envelope) { e.AuthTag = "" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mutated := env
			test.mutate(&mutated)
			// Every corruption collapses to the same error as a wrong
			// password — no oracle.
			if _, err := Open(mutated, password); !errors.Is(err, ErrAuthFailure) {
				t.Errorf("err = %v, want ErrAuthFailure", err)
			}
		})
	}
}

func TestEnvelopeFieldLengths(t *testing.T) {
	password := testPassword(t, "correct-horse")

	env, err := Seal([]byte{0xaa}, password)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if got := len(env.Salt); got != saltLength*2 {
		t.Errorf("salt hex length = %d, want %d", got, saltLength*2)
	}
	if got := len(env.IV); got != ivLength*2 {
		t.Errorf("iv hex length = %d, want %d", got, ivLength*2)
	}
	if got := len(env.AuthTag); got != tagLength*2 {
		t.Errorf("auth tag hex length = %d, want %d", got, tagLength*2)
	}
}
