// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope seals a single secret value under a password. A sealed
// envelope is a salt/IV/auth-tag/ciphertext quadruple: the password and a
// fresh random salt feed a deliberately slow PBKDF2 derivation, and the
// resulting key encrypts the secret with AES-256-GCM. The package knows
// nothing about wallets or keystores — it is a pure transform used by
// lib/keystore to protect private key material at rest.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/custodia-foundation/custodia/lib/secret"
)

const (
	saltLength = 32
	ivLength   = 16
	tagLength  = 16
	keyLength  = 32

	// kdfIterations is fixed for the life of the store format. Changing it
	// would silently invalidate every existing envelope, so any future
	// change needs an explicit format version.
	kdfIterations = 210_000
)

// ErrAuthFailure is returned by Open whenever decryption does not
// authenticate. A wrong password, a tampered ciphertext, and a corrupted
// field are deliberately indistinguishable — reporting which part failed
// would hand an attacker a decryption oracle.
var ErrAuthFailure = errors.New("envelope: authentication failed")

// Envelope is the at-rest form of a sealed secret. All fields are
// hex-encoded. The GCM authentication tag is stored separately from the
// ciphertext so the stored form is self-describing.
type Envelope struct {
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	AuthTag    string `json:"authTag"`
	Ciphertext string `json:"ciphertext"`
}

// Seal encrypts plaintext under the password. Every call draws a fresh
// random salt and IV, so sealing the same secret twice — or the same
// password across identities — never produces identical ciphertexts.
func Seal(plaintext []byte, password *secret.Buffer) (Envelope, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Envelope{}, fmt.Errorf("envelope: generating salt: %w", err)
	}
	iv := make([]byte, ivLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Envelope{}, fmt.Errorf("envelope: generating iv: %w", err)
	}

	key := deriveKey(password, salt)
	defer secret.Zero(key)

	aead, err := newAEAD(key)
	if err != nil {
		return Envelope{}, err
	}

	sealed := aead.Seal(nil, iv, plaintext, nil)
	boundary := len(sealed) - tagLength

	return Envelope{
		Salt:       hex.EncodeToString(salt),
		IV:         hex.EncodeToString(iv),
		AuthTag:    hex.EncodeToString(sealed[boundary:]),
		Ciphertext: hex.EncodeToString(sealed[:boundary]),
	}, nil
}

// Open re-derives the key from the password and the stored salt and
// attempts authenticated decryption. On success the plaintext is returned
// in a guarded buffer the caller must close. On any failure — undecodable
// fields, wrong lengths, tag mismatch — it returns [ErrAuthFailure].
func Open(env Envelope, password *secret.Buffer) (*secret.Buffer, error) {
	salt, err := hex.DecodeString(env.Salt)
	if err != nil || len(salt) != saltLength {
		return nil, ErrAuthFailure
	}
	iv, err := hex.DecodeString(env.IV)
	if err != nil || len(iv) != ivLength {
		return nil, ErrAuthFailure
	}
	tag, err := hex.DecodeString(env.AuthTag)
	if err != nil || len(tag) != tagLength {
		return nil, ErrAuthFailure
	}
	ciphertext, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, ErrAuthFailure
	}

	key := deriveKey(password, salt)
	defer secret.Zero(key)

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, ErrAuthFailure
	}

	// FromBytes zeroes the heap copy of the plaintext.
	buffer, err := secret.FromBytes(plaintext)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("envelope: protecting plaintext: %w", err)
	}
	return buffer, nil
}

// deriveKey stretches the password into a 256-bit key. PBKDF2-SHA256 with
// a fixed six-figure iteration count: a sub-second cost per unlock that a
// brute-force attacker pays per guess. The caller zeroes the returned key.
func deriveKey(password *secret.Buffer, salt []byte) []byte {
	return pbkdf2.Key(password.Bytes(), salt, kdfIterations, keyLength, sha256.New)
}

// newAEAD builds the AES-256-GCM instance used by both Seal and Open. The
// IV length matches the stored format (16 bytes), not GCM's 12-byte
// default.
func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("envelope: creating cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("envelope: creating GCM: %w", err)
	}
	return aead, nil
}
