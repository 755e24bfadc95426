// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package wallet is the transaction-authorization engine: the narrow set
// of operations that may transiently materialize a stored account secret.
// Each credential-bearing operation unlocks a one-shot signing session
// from the keystore, uses it exactly once, and discards it — the key
// never outlives the call, never crosses a network wait, and never
// appears in a return value.
//
// Operations:
//
//   - [Engine.Create] -- generate and seal a new account
//   - [Engine.Address] / [Engine.Balance] -- password-free views
//   - [Engine.SignMessage] -- EIP-191 personal signature
//   - [Engine.Transfer] -- balance-gated value transfer
//   - [Engine.CollectFees] -- direct or sponsored creator-fee claim
//   - [Engine.ClaimVested] -- vesting-contract claim
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/custodia-foundation/custodia/lib/chain"
	"github.com/custodia-foundation/custodia/lib/keystore"
	"github.com/custodia-foundation/custodia/lib/launchpad"
	"github.com/custodia-foundation/custodia/lib/ledger"
	"github.com/custodia-foundation/custodia/lib/secret"
)

// defaultConfirmationTimeout bounds how long a broadcast waits for its
// receipt before surfacing ErrConfirmationTimeout.
const defaultConfirmationTimeout = 2 * time.Minute

// Sponsor is the launch platform's sponsored-claim surface. It receives
// an address, a claim message, and a signature — never key material.
type Sponsor interface {
	CollectFees(ctx context.Context, request launchpad.CollectRequest) (*launchpad.CollectResponse, error)
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	// Store holds the encrypted account records.
	Store *keystore.Store
	// Chain reads balances and broadcasts signed transactions. May be
	// nil when only offline operations (Create, Address, SignMessage)
	// are used.
	Chain chain.Client
	// Sponsor submits sponsored fee claims. Required for CollectFees on
	// zero-balance accounts.
	Sponsor Sponsor
	// Ledger records claim outcomes. Optional.
	Ledger *ledger.Ledger
	// FeePool is the creator-fee pool contract invoked by direct claims.
	FeePool common.Address
	// Vesting is the vesting contract invoked by ClaimVested.
	Vesting common.Address
	// ConfirmationTimeout bounds receipt waits. Defaults to two minutes.
	ConfirmationTimeout time.Duration
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Engine implements the authorization operations.
type Engine struct {
	store               *keystore.Store
	chain               chain.Client
	sponsor             Sponsor
	ledger              *ledger.Ledger
	feePool             common.Address
	vesting             common.Address
	confirmationTimeout time.Duration
	logger              *slog.Logger
}

// NewEngine validates the configuration and returns an engine.
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("wallet: Store is required")
	}

	timeout := config.ConfirmationTimeout
	if timeout <= 0 {
		timeout = defaultConfirmationTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:               config.Store,
		chain:               config.Chain,
		sponsor:             config.Sponsor,
		ledger:              config.Ledger,
		feePool:             config.FeePool,
		vesting:             config.Vesting,
		confirmationTimeout: timeout,
		logger:              logger,
	}, nil
}

// Receipt reports a confirmed transaction.
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
}

// Create generates a fresh account for identity sealed under password and
// returns its address. Fails with keystore.ErrAlreadyExists when the
// identity already has a wallet.
func (e *Engine) Create(identity string, password *secret.Buffer) (common.Address, error) {
	return e.store.Create(identity, password)
}

// Address returns the identity's stored address. No password required —
// the address is public material.
func (e *Engine) Address(identity string) (common.Address, error) {
	record, err := e.store.Load(identity)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(record.Address), nil
}

// requireChain guards the network-backed operations when the engine was
// built without a chain client.
func (e *Engine) requireChain() error {
	if e.chain == nil {
		return fmt.Errorf("wallet: no chain client configured")
	}
	return nil
}

// Balance returns the identity's current native-token balance. No
// password required.
func (e *Engine) Balance(ctx context.Context, identity string) (*big.Int, error) {
	if err := e.requireChain(); err != nil {
		return nil, err
	}
	address, err := e.Address(identity)
	if err != nil {
		return nil, err
	}
	balance, err := e.chain.BalanceAt(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: reading balance: %v", ErrNetwork, err)
	}
	return balance, nil
}

// SignMessage produces an EIP-191 personal signature over message,
// hex-encoded with 0x prefix. The session is discarded before returning;
// the private key never appears in the result.
func (e *Engine) SignMessage(identity string, password *secret.Buffer, message []byte) (string, error) {
	unlocked, err := e.unlock(identity, password)
	if err != nil {
		return "", err
	}
	defer unlocked.Close()

	signature, err := unlocked.signPersonal(message)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(signature), nil
}

// signingInputs gathers everything needed to build and sign a
// transaction for address. All network reads happen here, before any key
// is decrypted.
type signingInputs struct {
	nonce    uint64
	gasPrice *big.Int
	chainID  *big.Int
}

func (e *Engine) gatherSigningInputs(ctx context.Context, address common.Address) (*signingInputs, error) {
	nonce, err := e.chain.PendingNonceAt(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: reading nonce: %v", ErrNetwork, err)
	}
	gasPrice, err := e.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading gas price: %v", ErrNetwork, err)
	}
	chainID, err := e.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading chain id: %v", ErrNetwork, err)
	}
	return &signingInputs{nonce: nonce, gasPrice: gasPrice, chainID: chainID}, nil
}

// signWithSession unlocks a session just long enough to sign tx, then
// closes it. The decrypted key is gone before the caller touches the
// network again.
func (e *Engine) signWithSession(identity string, password *secret.Buffer, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	unlocked, err := e.unlock(identity, password)
	if err != nil {
		return nil, err
	}
	defer unlocked.Close()

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), unlocked.key)
	if err != nil {
		return nil, fmt.Errorf("wallet: signing transaction: %w", err)
	}
	return signed, nil
}

// broadcastAndWait sends a signed transaction and waits for its receipt
// under the engine's confirmation timeout. A timeout is surfaced as
// ErrConfirmationTimeout without rebroadcast — the transaction is already
// irrevocably out.
func (e *Engine) broadcastAndWait(ctx context.Context, signed *types.Transaction) (*Receipt, error) {
	if err := e.chain.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("%w: broadcasting: %v", ErrNetwork, err)
	}

	waitContext, cancel := context.WithTimeout(ctx, e.confirmationTimeout)
	defer cancel()

	receipt, err := e.chain.WaitMined(waitContext, signed)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: tx %s", ErrConfirmationTimeout, signed.Hash().Hex())
		}
		return nil, fmt.Errorf("%w: awaiting confirmation: %v", ErrNetwork, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("wallet: transaction %s reverted", signed.Hash().Hex())
	}

	return &Receipt{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// recordClaim appends a claim outcome to the fee ledger, when one is
// wired. Ledger failures are logged, not propagated — the claim itself
// already succeeded on chain or at the platform.
func (e *Engine) recordClaim(identity string, address common.Address, method, txHash string) {
	if e.ledger == nil {
		return
	}
	entry := ledger.Entry{
		Identity:  identity,
		Address:   address.Hex(),
		Method:    method,
		TxHash:    txHash,
		ClaimedAt: time.Now().UTC(),
	}
	if err := e.ledger.Append(entry); err != nil {
		e.logger.Warn("recording claim in ledger failed", "identity", identity, "error", err)
	}
}
