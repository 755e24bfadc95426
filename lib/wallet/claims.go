// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/custodia-foundation/custodia/lib/chain"
	"github.com/custodia-foundation/custodia/lib/launchpad"
	"github.com/custodia-foundation/custodia/lib/secret"
)

// ClaimPath is the per-invocation decision of how a fee claim pays its
// gas. Evaluated once from the observed balance, independent of network
// timing, so the branch is unit-testable on its own.
type ClaimPath int

const (
	// ClaimDirect: the account has gas money and invokes the fee pool
	// itself.
	ClaimDirect ClaimPath = iota
	// ClaimSponsored: the account is empty, so the launch platform
	// executes the claim at its own expense, authorized by a signature.
	ClaimSponsored
)

func (p ClaimPath) String() string {
	if p == ClaimSponsored {
		return "sponsored"
	}
	return "direct"
}

// DecideClaimPath picks the claim path from a gas balance: any nonzero
// balance claims directly, an empty account goes through the sponsor.
func DecideClaimPath(balance *big.Int) ClaimPath {
	if balance.Sign() > 0 {
		return ClaimDirect
	}
	return ClaimSponsored
}

// ClaimResult reports a completed fee claim and which path it took.
type ClaimResult struct {
	Method      string `json:"method"`
	TxHash      string `json:"txHash,omitempty"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	Message     string `json:"message,omitempty"`
}

// CollectFees claims identity's accumulated creator fees. The account's
// gas balance is read once and decides the path: a funded account invokes
// the fee pool contract directly and waits for the receipt; an empty
// account signs an off-chain claim statement and hands it to the launch
// platform, which pays the gas. The platform only ever receives the
// address, the statement, and the signature.
func (e *Engine) CollectFees(ctx context.Context, identity string, password *secret.Buffer) (*ClaimResult, error) {
	if err := e.requireChain(); err != nil {
		return nil, err
	}
	from, err := e.Address(identity)
	if err != nil {
		return nil, err
	}

	balance, err := e.chain.BalanceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%w: reading balance: %v", ErrNetwork, err)
	}

	switch DecideClaimPath(balance) {
	case ClaimDirect:
		return e.collectFeesDirect(ctx, identity, password, from)
	default:
		return e.collectFeesSponsored(ctx, identity, password, from)
	}
}

func (e *Engine) collectFeesDirect(ctx context.Context, identity string, password *secret.Buffer, from common.Address) (*ClaimResult, error) {
	calldata, err := chain.ClaimFeesCallData()
	if err != nil {
		return nil, fmt.Errorf("wallet: packing fee claim: %w", err)
	}

	receipt, err := e.invokeContract(ctx, identity, password, from, e.feePool, calldata)
	if err != nil {
		return nil, err
	}

	e.recordClaim(identity, from, ClaimDirect.String(), receipt.TxHash)
	e.logger.Info("fees claimed directly", "identity", identity, "tx", receipt.TxHash)
	return &ClaimResult{
		Method:      ClaimDirect.String(),
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
	}, nil
}

func (e *Engine) collectFeesSponsored(ctx context.Context, identity string, password *secret.Buffer, from common.Address) (*ClaimResult, error) {
	if e.sponsor == nil {
		return nil, fmt.Errorf("wallet: no sponsor configured for zero-balance fee claim")
	}

	// The statement binds the claim to this account and this moment; the
	// platform rejects stale timestamps.
	message := fmt.Sprintf("collect-fees:%s:%s", from.Hex(), time.Now().UTC().Format(time.RFC3339))

	unlocked, err := e.unlock(identity, password)
	if err != nil {
		return nil, err
	}
	signature, err := unlocked.signPersonal([]byte(message))
	unlocked.Close()
	if err != nil {
		return nil, err
	}

	// The key is discarded; only address + statement + signature cross
	// the wire.
	response, err := e.sponsor.CollectFees(ctx, launchpad.CollectRequest{
		Address:   from.Hex(),
		Message:   message,
		Signature: hexutil.Encode(signature),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sponsored claim: %v", ErrNetwork, err)
	}
	if !response.Success {
		return nil, fmt.Errorf("wallet: sponsored claim rejected: %s", response.Message)
	}

	e.recordClaim(identity, from, ClaimSponsored.String(), response.TransactionHash)
	e.logger.Info("fees claimed via sponsor", "identity", identity, "tx", response.TransactionHash)
	return &ClaimResult{
		Method:  ClaimSponsored.String(),
		TxHash:  response.TransactionHash,
		Message: response.Message,
	}, nil
}

// ClaimVested invokes the vesting contract's claim entry point for a
// launched token. Same unlock/invoke/discard pattern as a direct fee
// claim; no balance branch — vesting claims are assumed gas-available or
// delegated entirely upstream.
func (e *Engine) ClaimVested(ctx context.Context, identity string, password *secret.Buffer, tokenAddress string) (*Receipt, error) {
	if err := e.requireChain(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(tokenAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, tokenAddress)
	}

	from, err := e.Address(identity)
	if err != nil {
		return nil, err
	}

	calldata, err := chain.ClaimVestedCallData(common.HexToAddress(tokenAddress))
	if err != nil {
		return nil, fmt.Errorf("wallet: packing vesting claim: %w", err)
	}

	receipt, err := e.invokeContract(ctx, identity, password, from, e.vesting, calldata)
	if err != nil {
		return nil, err
	}

	e.recordClaim(identity, from, "vesting", receipt.TxHash)
	e.logger.Info("vested tokens claimed", "identity", identity, "token", tokenAddress, "tx", receipt.TxHash)
	return receipt, nil
}

// invokeContract runs the shared direct-invocation flow: gather signing
// inputs, sign inside a one-shot session, broadcast and wait with the key
// already discarded.
func (e *Engine) invokeContract(ctx context.Context, identity string, password *secret.Buffer, from, contract common.Address, calldata []byte) (*Receipt, error) {
	inputs, err := e.gatherSigningInputs(ctx, from)
	if err != nil {
		return nil, err
	}

	tx := chain.NewContractCallTx(inputs.nonce, contract, inputs.gasPrice, calldata)
	signed, err := e.signWithSession(identity, password, tx, inputs.chainID)
	if err != nil {
		return nil, err
	}

	return e.broadcastAndWait(ctx, signed)
}
