// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/custodia-foundation/custodia/lib/chain"
	"github.com/custodia-foundation/custodia/lib/secret"
)

// Transfer sends amount wei from identity's account to a destination
// address and waits for on-chain confirmation.
//
// Validation happens before any key is decrypted: the destination must be
// a well-formed address and the stored account's balance must cover the
// amount. The session exists only for the signing step — broadcast and
// the confirmation wait run with the key already discarded.
//
// Irreversible once broadcast. A confirmation timeout is reported as
// ErrConfirmationTimeout and never retried.
func (e *Engine) Transfer(ctx context.Context, identity string, password *secret.Buffer, to string, amount *big.Int) (*Receipt, error) {
	if err := e.requireChain(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, to)
	}
	destination := common.HexToAddress(to)

	from, err := e.Address(identity)
	if err != nil {
		return nil, err
	}

	balance, err := e.chain.BalanceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%w: reading balance: %v", ErrNetwork, err)
	}
	if balance.Cmp(amount) < 0 {
		return nil, &InsufficientBalanceError{Have: balance, Want: amount}
	}

	inputs, err := e.gatherSigningInputs(ctx, from)
	if err != nil {
		return nil, err
	}

	tx := chain.NewTransferTx(inputs.nonce, destination, amount, inputs.gasPrice)
	signed, err := e.signWithSession(identity, password, tx, inputs.chainID)
	if err != nil {
		return nil, err
	}

	receipt, err := e.broadcastAndWait(ctx, signed)
	if err != nil {
		return nil, err
	}

	e.logger.Info("transfer confirmed",
		"identity", identity, "to", destination.Hex(),
		"amount", amount.String(), "tx", receipt.TxHash, "block", receipt.BlockNumber)
	return receipt, nil
}
