// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package chain is the engine's boundary to the blockchain network: read
// balances, broadcast already-signed transactions, and await confirmation
// receipts. The engine consumes the [Client] interface; production wiring
// dials a JSON-RPC endpoint via go-ethereum's ethclient. Nothing in this
// package ever sees a private key — signing happens upstream, inside the
// wallet engine's session.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Gas limits for the transaction shapes the engine produces. A plain
// value transfer is exactly 21000; the claim entry points are small
// state-mutating calls with a fixed headroom rather than a per-call
// estimation round-trip.
const (
	TransferGasLimit     = 21_000
	ContractCallGasLimit = 250_000
)

// Client is the chain surface the wallet engine consumes.
type Client interface {
	// ChainID returns the network's chain identifier, used for
	// replay-protected signing.
	ChainID(ctx context.Context) (*big.Int, error)

	// BalanceAt returns the current native-token balance of address.
	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)

	// PendingNonceAt returns the next nonce for address including
	// pending transactions.
	PendingNonceAt(ctx context.Context, address common.Address) (uint64, error)

	// SuggestGasPrice returns the node's suggested gas price.
	SuggestGasPrice(ctx context.Context) (*big.Int, error)

	// SendTransaction broadcasts a signed transaction. Irrevocable once
	// accepted — callers must never retry on a confirmation timeout.
	SendTransaction(ctx context.Context, tx *types.Transaction) error

	// WaitMined blocks until the transaction is mined or ctx expires.
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// RPCClient implements Client over a JSON-RPC connection.
type RPCClient struct {
	inner *ethclient.Client
}

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, rawURL string) (*RPCClient, error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dialing %s: %w", rawURL, err)
	}
	return &RPCClient{inner: client}, nil
}

// Close releases the underlying RPC connection.
func (c *RPCClient) Close() {
	c.inner.Close()
}

func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.inner.ChainID(ctx)
}

func (c *RPCClient) BalanceAt(ctx context.Context, address common.Address) (*big.Int, error) {
	return c.inner.BalanceAt(ctx, address, nil)
}

func (c *RPCClient) PendingNonceAt(ctx context.Context, address common.Address) (uint64, error) {
	return c.inner.PendingNonceAt(ctx, address)
}

func (c *RPCClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return c.inner.SuggestGasPrice(ctx)
}

func (c *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.inner.SendTransaction(ctx, tx)
}

func (c *RPCClient) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, c.inner, tx)
}

// NewTransferTx builds an unsigned value transfer.
func NewTransferTx(nonce uint64, to common.Address, amount, gasPrice *big.Int) *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      TransferGasLimit,
		GasPrice: gasPrice,
	})
}

// NewContractCallTx builds an unsigned zero-value contract invocation.
func NewContractCallTx(nonce uint64, to common.Address, gasPrice *big.Int, data []byte) *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    new(big.Int),
		Gas:      ContractCallGasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}
