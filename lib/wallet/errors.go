// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/custodia-foundation/custodia/lib/keystore"
)

var (
	// ErrNoWallet is returned by any operation on an identity with no
	// stored record. Aliased from the keystore so callers match either
	// package's sentinel.
	ErrNoWallet = keystore.ErrNoWallet

	// ErrInvalidPassword is the user-facing translation of the envelope's
	// authentication failure. It deliberately does not say whether the
	// password was wrong or the envelope corrupt.
	ErrInvalidPassword = errors.New("wallet: invalid password")

	// ErrInvalidAddress is returned when a destination address is not a
	// well-formed hex address.
	ErrInvalidAddress = errors.New("wallet: invalid destination address")

	// ErrNetwork tags chain-client failures (balance reads, broadcasts).
	ErrNetwork = errors.New("wallet: network error")

	// ErrConfirmationTimeout is returned when a broadcast transaction was
	// not mined within the configured window. The transaction may still
	// mine later — the engine never rebroadcasts, since retrying a
	// transfer could double-send.
	ErrConfirmationTimeout = errors.New("wallet: confirmation timed out")
)

// InsufficientBalanceError reports a transfer that exceeds the account's
// funds, carrying both sides of the comparison.
type InsufficientBalanceError struct {
	Have *big.Int
	Want *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("wallet: insufficient balance: have %s wei, want %s wei", e.Have, e.Want)
}
