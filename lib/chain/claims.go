// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Claim entry points the engine invokes directly. The ABIs are fixed by
// the deployed launch-platform contracts.
const (
	feePoolABIJSON = `[{"type":"function","name":"claimCreatorFees","stateMutability":"nonpayable","inputs":[],"outputs":[]}]`
	vestingABIJSON = `[{"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"}],"outputs":[]}]`
)

var (
	feePoolABI = mustParseABI(feePoolABIJSON)
	vestingABI = mustParseABI(vestingABIJSON)
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic("chain: parsing embedded ABI: " + err.Error())
	}
	return parsed
}

// ClaimFeesCallData packs the calldata for the fee pool's creator-fee
// claim entry point.
func ClaimFeesCallData() ([]byte, error) {
	return feePoolABI.Pack("claimCreatorFees")
}

// ClaimVestedCallData packs the calldata for the vesting contract's claim
// entry point for the given launched token.
func ClaimVestedCallData(token common.Address) ([]byte, error) {
	return vestingABI.Pack("claim", token)
}
