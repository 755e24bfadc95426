// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/custodia-foundation/custodia/lib/envelope"
	"github.com/custodia-foundation/custodia/lib/secret"
)

// session is the transient unlocked signing context: the parsed private
// key and its address. A session exists only inside one operation — it is
// created by unlock, consumed exactly once, and closed (key scrubbed)
// before the operation returns, success or failure. There is no caching
// and no reuse: every credential-bearing operation pays the full
// password-derivation cost in exchange for never holding a decrypted key
// beyond its own lifetime.
type session struct {
	address common.Address
	key     *ecdsa.PrivateKey
}

// unlock loads the identity's record and decrypts it with the supplied
// password. An absent record surfaces as ErrNoWallet; an envelope that
// does not authenticate surfaces as ErrInvalidPassword.
func (e *Engine) unlock(identity string, password *secret.Buffer) (*session, error) {
	record, err := e.store.Load(identity)
	if err != nil {
		return nil, err
	}

	plaintext, err := envelope.Open(record.Envelope, password)
	if err != nil {
		if errors.Is(err, envelope.ErrAuthFailure) {
			return nil, ErrInvalidPassword
		}
		return nil, err
	}
	defer plaintext.Close()

	key, err := crypto.ToECDSA(plaintext.Bytes())
	if err != nil {
		// A record whose envelope opens but does not parse as a key is a
		// corrupted store, but distinguishing that from a wrong password
		// would leak which stage failed.
		return nil, ErrInvalidPassword
	}

	return &session{
		address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}, nil
}

// Close scrubs the private scalar. Safe to call more than once.
func (s *session) Close() {
	if s.key != nil && s.key.D != nil {
		s.key.D.SetInt64(0)
	}
	s.key = nil
}

// signPersonal signs message with the session key using the EIP-191
// personal-sign scheme and returns the 65-byte signature with the
// recovery id adjusted to 27/28.
func (s *session) signPersonal(message []byte) ([]byte, error) {
	digest := personalDigest(message)
	signature, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("wallet: signing: %w", err)
	}
	signature[64] += 27
	return signature, nil
}

// personalDigest hashes a message under the EIP-191 personal-sign prefix:
// keccak256("\x19Ethereum Signed Message:\n" + len(message) + message).
func personalDigest(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256(append([]byte(prefix), message...))
}
