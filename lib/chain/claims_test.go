// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestClaimFeesCallData(t *testing.T) {
	data, err := ClaimFeesCallData()
	if err != nil {
		t.Fatalf("ClaimFeesCallData: %v", err)
	}

	selector := crypto.Keccak256([]byte("claimCreatorFees()"))[:4]
	if !bytes.Equal(data, selector) {
		t.Errorf("calldata = %x, want selector %x", data, selector)
	}
}

func TestClaimVestedCallData(t *testing.T) {
	token := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	data, err := ClaimVestedCallData(token)
	if err != nil {
		t.Fatalf("ClaimVestedCallData: %v", err)
	}

	selector := crypto.Keccak256([]byte("claim(address)"))[:4]
	if !bytes.Equal(data[:4], selector) {
		t.Errorf("selector = %x, want %x", data[:4], selector)
	}
	if len(data) != 4+32 {
		t.Fatalf("calldata length = %d, want 36", len(data))
	}
	if got := common.BytesToAddress(data[4:]); got != token {
		t.Errorf("packed token = %s, want %s", got.Hex(), token.Hex())
	}
}

func TestNewTransferTx(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tx := NewTransferTx(7, to, big.NewInt(1000), big.NewInt(5))

	if tx.Nonce() != 7 {
		t.Errorf("nonce = %d, want 7", tx.Nonce())
	}
	if tx.Gas() != TransferGasLimit {
		t.Errorf("gas = %d, want %d", tx.Gas(), TransferGasLimit)
	}
	if *tx.To() != to {
		t.Errorf("to = %s, want %s", tx.To().Hex(), to.Hex())
	}
	if len(tx.Data()) != 0 {
		t.Errorf("transfer carries calldata: %x", tx.Data())
	}
}
